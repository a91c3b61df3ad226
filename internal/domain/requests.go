package domain

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var ErrLeadContactRequired = errors.New("at least one of name, email or phone is required")

type CreatePostRequest struct {
	Content     string `json:"content"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Platform    string `json:"platform,omitempty"`
	PublishDate string `json:"publishDate,omitempty"`
}

// Validate rejects empty content at creation time so a blank post can never
// reach the processing loop's silent-skip branch.
func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.ImageURL, is.URL),
		validation.Field(&r.Platform, validation.In(
			string(PlatformInstagram), string(PlatformFacebook), string(PlatformWhatsApp))),
	)
}

type BatchCreateRequest struct {
	Posts []CreatePostRequest `json:"posts"`
}

func (r BatchCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Posts, validation.Required, validation.Length(1, 0)),
	)
}

type PublishNowRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
	Platform string `json:"platform,omitempty"`
}

func (r PublishNowRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.ImageURL, is.URL),
	)
}

type CreateLeadRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Source   string `json:"source,omitempty"`
	Campaign string `json:"campaignName,omitempty"`
}

func (r CreateLeadRequest) Validate() error {
	if r.Name == "" && r.Email == "" && r.Phone == "" {
		return ErrLeadContactRequired
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
	)
}

type SendWhatsAppRequest struct {
	To           string `json:"to"`
	Text         string `json:"text,omitempty"`
	Type         string `json:"type,omitempty"`
	TemplateName string `json:"templateName,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	Caption      string `json:"caption,omitempty"`
}

func (r SendWhatsAppRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.To, validation.Required),
		validation.Field(&r.ImageURL, is.URL),
	); err != nil {
		return err
	}
	switch r.Type {
	case "template":
		return validation.Validate(r.TemplateName, validation.Required.Error("templateName is required for template messages"))
	case "image":
		return validation.Validate(r.ImageURL, validation.Required.Error("imageUrl is required for image messages"))
	default:
		return validation.Validate(r.Text, validation.Required.Error("text is required"))
	}
}

type SendMessengerRequest struct {
	RecipientID string `json:"recipientId"`
	Text        string `json:"text"`
}

func (r SendMessengerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RecipientID, validation.Required),
		validation.Field(&r.Text, validation.Required),
	)
}

type LogMessageRequest struct {
	From     string `json:"from"`
	Text     string `json:"text"`
	Platform string `json:"platform,omitempty"`
}

func (r LogMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.Text, validation.Required),
	)
}
