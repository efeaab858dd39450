package api

import "time"

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	SelfieURL string `json:"selfieURL,omitempty"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Membership struct {
	UserID string `json:"userID"`
	Role   string `json:"role"`
	User   *User  `json:"user,omitempty"`
}

type Group struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	OwnerID     string       `json:"ownerID"`
	Owner       *User        `json:"owner,omitempty"`
	Memberships []Membership `json:"memberships,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type GroupList struct {
	Groups []Group `json:"groups"`
}

type Invite struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Email     *string   `json:"email"`
	InviteURL string    `json:"inviteUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type InviteResult struct {
	Invite Invite `json:"invite"`
}

type AcceptResult struct {
	Message       string `json:"message"`
	AlreadyMember bool   `json:"alreadyMember"`
	Group         Group  `json:"group"`
}

type Photo struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerID"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	Owner        *User     `json:"owner,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type PhotoList struct {
	Photos []Photo `json:"photos"`
}

type UploadResult struct {
	Count  int     `json:"count"`
	Photos []Photo `json:"photos"`
}

type Message struct {
	Message string `json:"message"`
}

type ActivityEntry struct {
	ID           string                 `json:"id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   string                 `json:"resourceID,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	IPAddress    string                 `json:"ipAddress"`
	CreatedAt    time.Time              `json:"createdAt"`
}

type ActivityList struct {
	Activity []ActivityEntry `json:"activity"`
}
