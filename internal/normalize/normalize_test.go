package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metahub/internal/domain"
	"metahub/internal/meta"
)

func TestParseEventMalformed(t *testing.T) {
	_, err := ParseEvent([]byte(`{"object": "page", "entry": "nope"}`))
	require.Error(t, err)

	_, err = ParseEvent([]byte(`not json`))
	require.Error(t, err)
}

func TestLeadRefs(t *testing.T) {
	body := []byte(`{
		"object": "page",
		"entry": [{
			"id": "page-1",
			"changes": [
				{"field": "leadgen", "value": {"leadgen_id": "lead-1", "ad_id": "ad-9"}},
				{"field": "feed", "value": {}},
				{"field": "leadgen", "value": {}}
			]
		}]
	}`)
	ev, err := ParseEvent(body)
	require.NoError(t, err)

	n := &Normalizer{}
	refs := n.LeadRefs(ev)
	require.Len(t, refs, 1)
	assert.Equal(t, "lead-1", refs[0].LeadgenID)
	assert.Equal(t, "ad-9", refs[0].AdID)

	// Wrong object type yields nothing regardless of content.
	ev.Object = ObjectInstagram
	assert.Nil(t, n.LeadRefs(ev))
}

func TestMessagesSkipsEchoesAndEmptySenders(t *testing.T) {
	body := []byte(`{
		"object": "page",
		"entry": [{
			"messaging": [
				{"sender": {"id": "u1"}, "timestamp": 1700000000000, "message": {"mid": "m1", "text": "oi"}},
				{"sender": {"id": "u2"}, "message": {"mid": "m2", "text": "echo", "is_echo": true}},
				{"sender": {"id": ""}, "message": {"mid": "m3", "text": "ghost"}},
				{"sender": {"id": "u4"}}
			]
		}]
	}`)
	ev, err := ParseEvent(body)
	require.NoError(t, err)

	n := &Normalizer{}
	msgs := n.Messages(ev)
	require.Len(t, msgs, 1)
	assert.Equal(t, "u1", msgs[0].From)
	assert.Equal(t, "oi", msgs[0].Text)
	assert.Equal(t, domain.MessageMessenger, msgs[0].Platform)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), msgs[0].ReceivedAt)
}

func TestMessagesInstagramPlatform(t *testing.T) {
	body := []byte(`{
		"object": "instagram",
		"entry": [{
			"messaging": [
				{"sender": {"id": "ig-user"}, "message": {"mid": "mid-1", "text": "dm"}}
			]
		}]
	}`)
	ev, err := ParseEvent(body)
	require.NoError(t, err)

	n := &Normalizer{}
	msgs := n.Messages(ev)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.MessageInstagramDM, msgs[0].Platform)
}

func TestWhatsAppMessage(t *testing.T) {
	body := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"contacts": [{"wa_id": "5511999", "profile": {"name": "Maria"}}],
					"messages": [{"id": "wamid.1", "from": "5511999", "timestamp": "1700000000", "type": "text", "text": {"body": "ola"}}]
				}
			}]
		}]
	}`)
	ev, err := ParseEvent(body)
	require.NoError(t, err)

	n := &Normalizer{}
	msg, ok := n.WhatsAppMessage(ev)
	require.True(t, ok)
	assert.Equal(t, "5511999", msg.From)
	assert.Equal(t, "Maria", msg.ContactName)
	assert.Equal(t, "ola", msg.Text)
	assert.Equal(t, "wamid.1", msg.MessageID)
	assert.Equal(t, domain.MessageWhatsApp, msg.Platform)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), msg.ReceivedAt)
}

func TestWhatsAppStatusOnlyIgnored(t *testing.T) {
	body := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"field": "messages",
				"value": {"statuses": [{"id": "wamid.2", "status": "delivered"}]}
			}]
		}]
	}`)
	ev, err := ParseEvent(body)
	require.NoError(t, err)

	n := &Normalizer{}
	_, ok := n.WhatsAppMessage(ev)
	assert.False(t, ok)
}

func TestWhatsAppContactNameFallsBackToNumber(t *testing.T) {
	ev := Event{
		Object: ObjectWhatsApp,
		Entry: []Entry{{
			Changes: []Change{{
				Field: "messages",
				Value: ChangeValue{
					Messages: []waMessage{{ID: "wamid.3", From: "5511888"}},
				},
			}},
		}},
	}

	n := &Normalizer{}
	msg, ok := n.WhatsAppMessage(ev)
	require.True(t, ok)
	assert.Equal(t, "5511888", msg.ContactName)
}

func TestParseLeadFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []meta.LeadField
		want   domain.Lead
	}{
		{
			name: "plain labels",
			fields: []meta.LeadField{
				{Name: "name", Values: []string{"Ana"}},
				{Name: "email", Values: []string{"ana@example.com"}},
				{Name: "phone", Values: []string{"+5511999"}},
			},
			want: domain.Lead{Name: "Ana", Email: "ana@example.com", Phone: "+5511999"},
		},
		{
			name: "separators stripped",
			fields: []meta.LeadField{
				{Name: "Full Name", Values: []string{"Bruno Silva"}},
				{Name: "E-mail", Values: []string{"bruno@example.com"}},
				{Name: "Phone_Number", Values: []string{"+5511888"}},
			},
			want: domain.Lead{Name: "Bruno Silva", Email: "bruno@example.com", Phone: "+5511888"},
		},
		{
			name: "portuguese labels",
			fields: []meta.LeadField{
				{Name: "Nome Completo", Values: []string{"Carla"}},
				{Name: "Telefone", Values: []string{"+5511777"}},
			},
			want: domain.Lead{Name: "Carla", Phone: "+5511777"},
		},
		{
			name: "later match wins",
			fields: []meta.LeadField{
				{Name: "email", Values: []string{"first@example.com"}},
				{Name: "work email", Values: []string{"second@example.com"}},
			},
			want: domain.Lead{Email: "second@example.com"},
		},
		{
			name: "unmatched and empty fields dropped",
			fields: []meta.LeadField{
				{Name: "company", Values: []string{"Acme"}},
				{Name: "email", Values: nil},
			},
			want: domain.Lead{},
		},
	}

	n := &Normalizer{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, n.ParseLeadFields(tc.fields))
		})
	}
}

func TestParseLeadFieldsStrict(t *testing.T) {
	n := &Normalizer{StrictLeadFields: true}

	lead := n.ParseLeadFields([]meta.LeadField{
		{Name: "Full Name", Values: []string{"Ana"}},
		{Name: "E-mail", Values: []string{"ana@example.com"}},
		{Name: "work email", Values: []string{"nope@example.com"}},
		{Name: "secondary phone", Values: []string{"+000"}},
	})
	assert.Equal(t, "Ana", lead.Name)
	assert.Equal(t, "ana@example.com", lead.Email)
	assert.Empty(t, lead.Phone)
}
