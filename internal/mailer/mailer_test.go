package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoicer/internal/config"
)

func invoiceMessage() Message {
	return Message{
		To:      "test@example.com",
		Subject: config.DefaultEmailSubject,
		Body:    config.DefaultEmailBody,
		Attachment: Attachment{
			Filename: "PT_Test_Company.pdf",
			Data:     []byte("%PDF-1.4 invoice"),
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MailConfig
		wantErr error
	}{
		{"smtp without password", config.MailConfig{Transport: "smtp", Sender: "me@example.com"}, ErrNotConfigured},
		{"resend without key", config.MailConfig{Transport: "resend", Sender: "me@example.com"}, ErrNotConfigured},
		{"smtp", config.MailConfig{Transport: "smtp", Sender: "me@example.com", Password: "app", Host: "smtp.gmail.com", Port: 587}, nil},
		{"resend", config.MailConfig{Transport: "resend", Sender: "me@example.com", APIKey: "re_123"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}
}

func TestSend_NoRecipient(t *testing.T) {
	msg := invoiceMessage()
	msg.To = "  "

	smtp := NewSMTP(config.MailConfig{Sender: "me@example.com", Password: "x", Host: "127.0.0.1", Port: 1})
	assert.ErrorIs(t, smtp.Send(context.Background(), msg), ErrNoRecipient)

	rs := NewResend(config.MailConfig{Sender: "me@example.com", APIKey: "x"})
	assert.ErrorIs(t, rs.Send(context.Background(), msg), ErrNoRecipient)
}

// =============================================================================
// SMTP
// =============================================================================

func TestBuildMessage(t *testing.T) {
	m := buildMessage("me@example.com", invoiceMessage())

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "From: me@example.com")
	assert.Contains(t, raw, "To: test@example.com")
	assert.Contains(t, raw, "Subject: Invoice")
	assert.Contains(t, raw, "Please find your invoice attached.")
	assert.Contains(t, raw, `filename="PT_Test_Company.pdf"`)
	assert.Contains(t, raw, "application/pdf")
	assert.Contains(t, raw, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 invoice")))
}

func TestSMTP_TransportError(t *testing.T) {
	// Grab a free port and close it so the dial is refused.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s := NewSMTP(config.MailConfig{Sender: "me@example.com", Password: "x", Host: "127.0.0.1", Port: port})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err = s.Send(ctx, invoiceMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test@example.com")
}

func TestSMTP_Timeout(t *testing.T) {
	// The server accepts the connection but never sends its greeting.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		l.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	s := NewSMTP(config.MailConfig{
		Sender:   "me@example.com",
		Password: "x",
		Host:     "127.0.0.1",
		Port:     l.Addr().(*net.TCPAddr).Port,
		Timeout:  200 * time.Millisecond,
	})

	start := time.Now()
	err = s.Send(context.Background(), invoiceMessage())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// =============================================================================
// RESEND
// =============================================================================

func TestResend_Send(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	rs := NewResend(config.MailConfig{Sender: "billing@example.com", APIKey: "re_test"})
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	rs.client.BaseURL = base

	require.NoError(t, rs.Send(context.Background(), invoiceMessage()))

	assert.Equal(t, "/emails", gotPath)
	assert.Equal(t, "Bearer re_test", gotAuth)
	assert.Equal(t, "billing@example.com", gotBody["from"])
	assert.Equal(t, "Invoice", gotBody["subject"])
	assert.Equal(t, []any{"test@example.com"}, gotBody["to"])

	attachments, ok := gotBody["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)
	assert.Equal(t, "PT_Test_Company.pdf", attachments[0].(map[string]any)["filename"])
}

func TestResend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
	}))
	defer srv.Close()

	rs := NewResend(config.MailConfig{Sender: "billing@example.com", APIKey: "re_test"})
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	rs.client.BaseURL = base

	err = rs.Send(context.Background(), invoiceMessage())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "test@example.com"))
}

func TestResend_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))
	defer srv.Close()

	rs := NewResend(config.MailConfig{Sender: "billing@example.com", APIKey: "re_test", Timeout: 200 * time.Millisecond})
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	rs.client.BaseURL = base

	start := time.Now()
	err = rs.Send(context.Background(), invoiceMessage())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestBuildRequest_WithoutAttachment(t *testing.T) {
	msg := invoiceMessage()
	msg.Attachment = Attachment{}

	req := buildRequest("billing@example.com", msg)
	assert.Empty(t, req.Attachments)
	assert.Equal(t, config.DefaultEmailBody, req.Text)
}
