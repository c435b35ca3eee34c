package eralove

// User is a couple member's profile. Field tags are camelCase because every
// payload crossing the pipeline has already been converted from the backend's
// snake_case wire form.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	DisplayName     string `json:"displayName,omitempty"`
	AvatarURL       string `json:"avatarUrl,omitempty"`
	PartnerID       string `json:"partnerId,omitempty"`
	AnniversaryDate string `json:"anniversaryDate,omitempty"`
}

// Session is the token-bearing response of login, register, and refresh.
type Session struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType,omitempty"`
	ExpiresIn    int    `json:"expiresIn,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Event is a shared calendar entry.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	EventDate   string `json:"eventDate"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

// Photo is a shared photo record. FileKey addresses the binary content under
// the backend's protected file prefix; display goes through ResolveImage.
type Photo struct {
	ID         string `json:"id"`
	FileKey    string `json:"fileKey"`
	Caption    string `json:"caption,omitempty"`
	UploadedBy string `json:"uploadedBy,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// RegisterParams are the fields for account creation.
type RegisterParams struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	DisplayName  string `json:"displayName,omitempty"`
	PartnerEmail string `json:"partnerEmail,omitempty"`
}

// UpdateProfileParams are the mutable profile fields. Empty values are
// omitted from the request.
type UpdateProfileParams struct {
	DisplayName     string `json:"displayName,omitempty"`
	AvatarURL       string `json:"avatarUrl,omitempty"`
	AnniversaryDate string `json:"anniversaryDate,omitempty"`
}

// CreateEventParams are the fields for a new calendar entry.
type CreateEventParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	EventDate   string `json:"eventDate"`
}

// CreatePhotoParams registers an uploaded file as a shared photo.
type CreatePhotoParams struct {
	FileKey string `json:"fileKey"`
	Caption string `json:"caption,omitempty"`
}
