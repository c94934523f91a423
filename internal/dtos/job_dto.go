package dtos

import "github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"

type JobExtractionRequest struct {
	RawHTML string `json:"rawHtml" binding:"required"`
	URL     string `json:"url" binding:"omitempty,url"`
}

type StatusChangeRequest struct {
	Status  models.Status `json:"status" binding:"required"`
	Details string        `json:"details" binding:"max=2000"`
}

type ProfileRequest struct {
	FullName string         `json:"fullName" binding:"max=200"`
	Headline string         `json:"headline" binding:"max=200"`
	Location string         `json:"location" binding:"max=200"`
	Phone    string         `json:"phone" binding:"max=50"`
	Bio      string         `json:"bio" binding:"max=5000"`
	Website  string         `json:"website" binding:"omitempty,url"`
	LinkedIn string         `json:"linkedin" binding:"omitempty,url"`
	GitHub   string         `json:"github" binding:"omitempty,url"`
	Skills   []models.Skill `json:"skills"`
}

// UserResponse is the signed-in user as the frontend sees it.
type UserResponse struct {
	ID             uint   `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Picture        string `json:"picture"`
	GmailConnected bool   `json:"gmailConnected"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Picture:        u.Picture,
		GmailConnected: u.HasGmailAccess(),
	}
}
