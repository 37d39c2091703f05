package mail

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/frontdesk/internal/entity"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func newTestSender(notifyTo string) (*EmailSender, *fakeDialer) {
	d := &fakeDialer{}
	return &EmailSender{From: "recepcja@example.com", NotifyTo: notifyTo, Location: time.UTC, dialer: d}, d
}

func TestNotifyNewLeadEscapesContent(t *testing.T) {
	s, d := newTestSender("biuro@example.com")
	lead := &entity.Lead{Name: "Ewa", Description: "<b>pilne</b>", Phone: "600100200", Chiropractor: "anna", Source: "webhook", CreatedAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)}

	require.NoError(t, s.NotifyNewLead(lead))
	require.Len(t, d.sent, 1)

	var buf bytes.Buffer
	_, err := d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "biuro@example.com")
	assert.NotContains(t, buf.String(), "<b>pilne</b>")
}

func TestNotifyNewLeadWithoutRecipientIsNoop(t *testing.T) {
	s, d := newTestSender("")
	require.NoError(t, s.NotifyNewLead(&entity.Lead{Name: "Ewa"}))
	assert.Empty(t, d.sent)
}

func TestSendBackupAttachesFile(t *testing.T) {
	s, d := newTestSender("")

	require.NoError(t, s.SendBackup("kopia@example.com", "frontdesk-backup.json", []byte(`{"leads":[]}`)))
	require.Len(t, d.sent, 1)

	var buf bytes.Buffer
	_, err := d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "frontdesk-backup.json")
}

func TestSendBackupWrapsDialError(t *testing.T) {
	s, d := newTestSender("")
	d.err = errors.New("connection refused")

	err := s.SendBackup("kopia@example.com", "x.json", nil)
	assert.ErrorContains(t, err, "send backup email")
}
