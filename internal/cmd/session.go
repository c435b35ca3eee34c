package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/eralove/eralove-go/sdk/config"
	log "github.com/sirupsen/logrus"
)

// DoProfile fetches and prints the signed-in couple member's profile.
func DoProfile(cfg *config.Config) {
	client, err := newClient(cfg)
	if err != nil {
		log.Errorf("failed to initialize client: %v", err)
		return
	}
	if !client.LoggedIn() {
		fmt.Println("Not signed in. Run with -login first.")
		return
	}

	user, err := client.Profile(context.Background())
	if err != nil {
		fmt.Printf("Failed to fetch profile: %v\n", err)
		return
	}

	fmt.Printf("ID:            %s\n", user.ID)
	fmt.Printf("Email:         %s\n", user.Email)
	fmt.Printf("Display name:  %s\n", user.DisplayName)
	if user.PartnerID != "" {
		fmt.Printf("Partner ID:    %s\n", user.PartnerID)
	}
	if user.AnniversaryDate != "" {
		fmt.Printf("Anniversary:   %s\n", user.AnniversaryDate)
	}
	if user.AvatarURL != "" {
		fmt.Printf("Avatar:        %s\n", user.AvatarURL)
	}
}

// DoEvents lists the couple's upcoming events.
func DoEvents(cfg *config.Config) {
	client, err := newClient(cfg)
	if err != nil {
		log.Errorf("failed to initialize client: %v", err)
		return
	}
	if !client.LoggedIn() {
		fmt.Println("Not signed in. Run with -login first.")
		return
	}

	events, err := client.Events(context.Background())
	if err != nil {
		fmt.Printf("Failed to fetch events: %v\n", err)
		return
	}
	if len(events) == 0 {
		fmt.Println("No events.")
		return
	}
	for _, event := range events {
		fmt.Printf("%s  %s", event.EventDate, event.Title)
		if event.Description != "" {
			fmt.Printf("  (%s)", event.Description)
		}
		fmt.Println()
	}
}

// DoFetch resolves an image URL through the authenticated fetcher and writes
// the bytes to the given output path, or just reports the classification when
// the URL is public.
func DoFetch(cfg *config.Config, rawURL, outputPath string) {
	client, err := newClient(cfg)
	if err != nil {
		log.Errorf("failed to initialize client: %v", err)
		return
	}

	resource, err := client.ResolveImage(context.Background(), rawURL)
	if err != nil {
		fmt.Printf("Failed to resolve %s: %v\n", rawURL, err)
		return
	}

	if resource.Blob == nil {
		fmt.Printf("Public URL, no fetch needed: %s\n", resource.URL)
		return
	}
	defer resource.Blob.Release()

	data, err := resource.Blob.Bytes()
	if err != nil {
		fmt.Printf("Failed to read blob: %v\n", err)
		return
	}
	if outputPath == "" {
		fmt.Printf("Fetched %d bytes (%s), handle %s\n", len(data), resource.Blob.ContentType(), resource.Blob.ID())
		return
	}
	if err = os.WriteFile(outputPath, data, 0o644); err != nil {
		fmt.Printf("Failed to write %s: %v\n", outputPath, err)
		return
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(data), outputPath)
}
