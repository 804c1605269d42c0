package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trouvetonartisan/backend/internal/app/repository"
	"github.com/trouvetonartisan/backend/internal/db"
	"github.com/trouvetonartisan/backend/pkg/mailer"
)

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func setupContactServiceTest(t *testing.T) (ContactService, *fakeMailer, *db.TestCatalog) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	catalog, err := db.SeedTestCatalog(testDB)
	require.NoError(t, err)

	m := &fakeMailer{}
	artisans := NewArtisanService(repository.NewArtisanRepository(testDB))
	return NewContactService(artisans, m), m, catalog
}

func validContactRequest(artisanID uint) ContactRequest {
	return ContactRequest{
		ArtisanID: artisanID,
		Name:      "Jean Client",
		Email:     "Jean.Client@Example.com",
		Subject:   "Demande de devis",
		Message:   "Bonjour,\nPouvez-vous me rappeler ?",
	}
}

func TestContactService_SendMessage(t *testing.T) {
	svc, m, catalog := setupContactServiceTest(t)
	artisan := catalog.Artisans["Durand Menuiserie"]

	err := svc.SendMessage(context.Background(), validContactRequest(artisan.ID))
	require.NoError(t, err)
	require.Len(t, m.sent, 1)

	msg := m.sent[0]
	assert.Equal(t, artisan.Email, msg.To)
	assert.Equal(t, "jean.client@example.com", msg.ReplyTo)
	assert.Equal(t, "[Trouve ton artisan] Demande de devis", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Bonjour,<br>Pouvez-vous me rappeler ?")
	assert.Contains(t, msg.HTMLBody, "Jean Client")
}

func TestContactService_MessageLengthBoundary(t *testing.T) {
	svc, m, catalog := setupContactServiceTest(t)
	artisanID := catalog.Artisans["Durand Menuiserie"].ID

	req := validContactRequest(artisanID)
	req.Message = strings.Repeat("a", 9)
	err := svc.SendMessage(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "message", verr.Fields[0].Field)
	assert.Empty(t, m.sent)

	req.Message = strings.Repeat("a", 10)
	assert.NoError(t, svc.SendMessage(context.Background(), req))
	assert.Len(t, m.sent, 1)
}

func TestContactService_Validation(t *testing.T) {
	svc, _, catalog := setupContactServiceTest(t)
	artisanID := catalog.Artisans["Durand Menuiserie"].ID

	tests := []struct {
		name   string
		modify func(*ContactRequest)
		field  string
	}{
		{"missing artisan id", func(r *ContactRequest) { r.ArtisanID = 0 }, "artisan_id"},
		{"name too short", func(r *ContactRequest) { r.Name = "J" }, "nom"},
		{"name too long", func(r *ContactRequest) { r.Name = strings.Repeat("n", 101) }, "nom"},
		{"invalid email", func(r *ContactRequest) { r.Email = "pas-un-email" }, "email"},
		{"subject too short", func(r *ContactRequest) { r.Subject = "ab" }, "objet"},
		{"message too long", func(r *ContactRequest) { r.Message = strings.Repeat("m", 2001) }, "message"},
		{"name is only markup", func(r *ContactRequest) { r.Name = "<script>x</script>" }, "nom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validContactRequest(artisanID)
			tt.modify(&req)

			err := svc.SendMessage(context.Background(), req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestContactService_UnknownArtisan(t *testing.T) {
	svc, m, _ := setupContactServiceTest(t)

	err := svc.SendMessage(context.Background(), validContactRequest(9999))
	assert.ErrorIs(t, err, ErrArtisanNotFound)
	assert.Empty(t, m.sent)
}

func TestContactService_DeliveryFailure(t *testing.T) {
	svc, m, catalog := setupContactServiceTest(t)
	m.err = errors.New("connection refused")

	err := svc.SendMessage(context.Background(), validContactRequest(catalog.Artisans["Durand Menuiserie"].ID))
	assert.ErrorIs(t, err, ErrMailDelivery)
}

func TestRenderContactEmail_EscapesInput(t *testing.T) {
	_, _, catalog := setupContactServiceTest(t)

	req := validContactRequest(1)
	req.Subject = "Prix < 100 & délai"
	body := renderContactEmail(catalog.Artisans["Durand Menuiserie"], req)

	assert.Contains(t, body, "Prix &lt; 100 &amp; délai")
}
