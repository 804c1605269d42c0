package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/trouvetonartisan/backend/pkg/logger"
	"github.com/trouvetonartisan/backend/pkg/mailer"
	"github.com/trouvetonartisan/backend/pkg/util"
)

var ErrMailDelivery = errors.New("mail delivery failed")

const (
	ContactSubjectPrefix  = "[Trouve ton artisan]"
	ContactSuccessMessage = "Votre message a été envoyé avec succès. L'artisan vous répondra sous 48h."
)

// ContactRequest is a visitor's message to an artisan.
type ContactRequest struct {
	ArtisanID uint   `json:"artisan_id" validate:"required,min=1"`
	Name      string `json:"nom" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Subject   string `json:"objet" validate:"required,min=3,max=200"`
	Message   string `json:"message" validate:"required,min=10,max=2000"`
}

// FieldError is one rejected field of a ContactRequest.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "invalid fields: " + strings.Join(names, ", ")
}

var contactFieldMessages = map[string]struct{ json, message string }{
	"ArtisanID": {"artisan_id", "ID artisan invalide"},
	"Name":      {"nom", "Le nom doit contenir entre 2 et 100 caractères"},
	"Email":     {"email", "Email invalide"},
	"Subject":   {"objet", "L'objet doit contenir entre 3 et 200 caractères"},
	"Message":   {"message", "Le message doit contenir entre 10 et 2000 caractères"},
}

// ArtisanFinder resolves the recipient of a contact message.
type ArtisanFinder interface {
	GetArtisanByID(ctx context.Context, id uint) (*model.Artisan, error)
}

type ContactService interface {
	SendMessage(ctx context.Context, req ContactRequest) error
}

type contactService struct {
	artisans ArtisanFinder
	mailer   mailer.Mailer
	validate *validator.Validate
}

func NewContactService(artisans ArtisanFinder, m mailer.Mailer) ContactService {
	return &contactService{
		artisans: artisans,
		mailer:   m,
		validate: validator.New(),
	}
}

// Normalize trims and strips markup from every text field.
func (r *ContactRequest) Normalize() {
	r.Name = util.SanitizeText(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Subject = util.SanitizeText(r.Subject)
	r.Message = util.SanitizeText(r.Message)
}

func (s *contactService) validateRequest(req ContactRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	result := &ValidationError{}
	for _, fe := range verrs {
		entry, ok := contactFieldMessages[fe.Field()]
		if !ok {
			entry.json, entry.message = fe.Field(), "Valeur invalide"
		}
		result.Fields = append(result.Fields, FieldError{Field: entry.json, Message: entry.message})
	}
	return result
}

// SendMessage validates the request, resolves the artisan and makes a single
// delivery attempt. Nothing is stored.
func (s *contactService) SendMessage(ctx context.Context, req ContactRequest) error {
	req.Normalize()
	if err := s.validateRequest(req); err != nil {
		return err
	}

	artisan, err := s.artisans.GetArtisanByID(ctx, req.ArtisanID)
	if err != nil {
		return err
	}

	msg := mailer.Message{
		To:       artisan.Email,
		ReplyTo:  req.Email,
		Subject:  fmt.Sprintf("%s %s", ContactSubjectPrefix, req.Subject),
		HTMLBody: renderContactEmail(artisan, req),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error("Failed to deliver contact message", err, map[string]interface{}{
			"artisan_id": artisan.ID,
		})
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	logger.Info("Contact message delivered", map[string]interface{}{
		"artisan_id": artisan.ID,
	})
	return nil
}

func renderContactEmail(artisan *model.Artisan, req ContactRequest) string {
	message := strings.ReplaceAll(html.EscapeString(req.Message), "\n", "<br>")

	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 10px;">
		<h1 style="color: #0074c7; margin-bottom: 20px;">Nouveau message via Trouve ton artisan</h1>
		<p style="color: #384050;">Bonjour %s,</p>
		<p style="color: #384050;">Vous avez reçu un nouveau message :</p>
		<ul style="color: #384050; line-height: 1.6;">
			<li><strong>Nom :</strong> %s</li>
			<li><strong>Email :</strong> %s</li>
			<li><strong>Objet :</strong> %s</li>
		</ul>
		<div style="background-color: #f1f8fc; padding: 20px; border-radius: 8px; color: #384050;">
			%s
		</div>
		<p style="color: #999; font-size: 14px; margin-top: 30px;">
			Répondez directement à cet email pour contacter %s.
		</p>
	</div>
</body>
</html>
`,
		html.EscapeString(artisan.Name),
		html.EscapeString(req.Name),
		html.EscapeString(req.Email),
		html.EscapeString(req.Subject),
		message,
		html.EscapeString(req.Name),
	)
}
