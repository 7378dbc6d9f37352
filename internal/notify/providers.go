package notify

import (
	"fmt"
	"net/url"
	"strings"
)

// ─── Field & Provider Types ─────────────────────────────────────────────

// FieldType enumerates input types the frontend should render.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldPassword FieldType = "password"
	FieldNumber   FieldType = "number"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
)

// SelectOption is a single choice in a select dropdown.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ProviderField describes one configuration input for a provider.
type ProviderField struct {
	Key         string         `json:"key"`
	Label       string         `json:"label"`
	Type        FieldType      `json:"type"`
	Placeholder string         `json:"placeholder,omitempty"`
	HelpText    string         `json:"help_text,omitempty"`
	Required    bool           `json:"required"`
	Options     []SelectOption `json:"options,omitempty"`
	Default     string         `json:"default,omitempty"`
}

// ProviderDef describes a notification provider's form schema.
type ProviderDef struct {
	Type   string          `json:"type"`
	Label  string          `json:"label"`
	Fields []ProviderField `json:"fields"`
}

// ─── Provider Registry ──────────────────────────────────────────────────

var providerRegistry = map[string]ProviderDef{
	"telegram": {
		Type: "telegram", Label: "Telegram",
		Fields: []ProviderField{
			{Key: "bot_token", Label: "Bot Token", Type: FieldPassword, Required: true,
				Placeholder: "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11",
				HelpText:    "Get a token from https://t.me/BotFather"},
			{Key: "chat_id", Label: "Chat ID", Type: FieldText, Required: true,
				Placeholder: "@channel or numeric ID",
				HelpText:    "Send a message to the bot and visit https://api.telegram.org/bot<TOKEN>/getUpdates"},
			{Key: "silent", Label: "Send Silently", Type: FieldCheckbox},
		},
	},
	"discord": {
		Type: "discord", Label: "Discord",
		Fields: []ProviderField{
			{Key: "webhook_url", Label: "Discord Webhook URL", Type: FieldText, Required: true,
				Placeholder: "https://discord.com/api/webhooks/...",
				HelpText:    "Server Settings → Integrations → View Webhooks → New Webhook"},
			{Key: "username", Label: "Bot Display Name", Type: FieldText,
				Placeholder: "Blumn"},
		},
	},
	"email": {
		Type: "email", Label: "Email (SMTP)",
		Fields: []ProviderField{
			{Key: "host", Label: "Hostname", Type: FieldText, Required: true,
				Placeholder: "smtp.gmail.com",
				HelpText:    "SMTP server hostname or IP"},
			{Key: "port", Label: "Port", Type: FieldNumber, Required: true,
				Default: "587", Placeholder: "587"},
			{Key: "security", Label: "Security", Type: FieldSelect, Default: "starttls",
				Options: []SelectOption{
					{Value: "starttls", Label: "STARTTLS (25, 587)"},
					{Value: "ssl", Label: "SSL/TLS (465)"},
					{Value: "none", Label: "None"},
				}},
			{Key: "username", Label: "Username", Type: FieldText,
				Placeholder: "user@example.com"},
			{Key: "password", Label: "Password", Type: FieldPassword},
			{Key: "from", Label: "From Email", Type: FieldText, Required: true,
				Placeholder: "\"Blumn\" <blumn@example.com>"},
			{Key: "to", Label: "To Email", Type: FieldText, Required: true,
				Placeholder: "me@example.com",
				HelpText:    "Comma-separated for multiple recipients"},
		},
	},
	"generic": {
		Type: "generic", Label: "Generic Webhook",
		Fields: []ProviderField{
			{Key: "webhook_url", Label: "Webhook URL", Type: FieldText, Required: true,
				Placeholder: "https://example.com/api/webhook",
				HelpText:    "For all supported services and URL formats, see https://shoutrrr.nickfedor.com/services/overview/"},
		},
	},
}

// GetProviderDefs returns all provider definitions for the frontend API.
func GetProviderDefs() map[string]ProviderDef {
	return providerRegistry
}

// GetProviderDef returns a single provider definition.
func GetProviderDef(serviceType string) (ProviderDef, bool) {
	def, ok := providerRegistry[serviceType]
	return def, ok
}

// ─── Validation ─────────────────────────────────────────────────────────

// ValidateFields checks that all required fields for a provider are present.
func ValidateFields(serviceType string, fields map[string]string) error {
	def, ok := providerRegistry[serviceType]
	if !ok {
		return fmt.Errorf("unknown provider: %s", serviceType)
	}
	for _, f := range def.Fields {
		if f.Required && strings.TrimSpace(fields[f.Key]) == "" {
			return fmt.Errorf("%s is required", f.Label)
		}
	}
	return nil
}

// SecretMask is the placeholder returned in place of stored secrets.
const SecretMask = "********"

// MaskSecrets returns a copy of fields with password-type values replaced by a mask.
func MaskSecrets(serviceType string, fields map[string]string) map[string]string {
	def, ok := providerRegistry[serviceType]
	if !ok {
		return fields
	}
	masked := make(map[string]string, len(fields))
	for k, v := range fields {
		masked[k] = v
	}
	secretKeys := make(map[string]bool)
	for _, f := range def.Fields {
		if f.Type == FieldPassword {
			secretKeys[f.Key] = true
		}
	}
	for k := range masked {
		if secretKeys[k] && masked[k] != "" {
			masked[k] = SecretMask
		}
	}
	return masked
}

// ─── URL Builders ───────────────────────────────────────────────────────

// BuildShoutrrrURL assembles a valid Shoutrrr URL from structured provider fields.
func BuildShoutrrrURL(serviceType string, fields map[string]string) (string, error) {
	switch serviceType {
	case "telegram":
		return buildTelegramURL(fields)
	case "discord":
		return buildDiscordURL(fields)
	case "email":
		return buildEmailURL(fields)
	case "generic":
		return buildGenericURL(fields)
	default:
		return "", fmt.Errorf("unknown provider: %s", serviceType)
	}
}

// telegram://botToken@telegram?chats=chatID[&notification=no]
func buildTelegramURL(f map[string]string) (string, error) {
	token := strings.TrimSpace(f["bot_token"])
	chatID := strings.TrimSpace(f["chat_id"])
	if token == "" || chatID == "" {
		return "", fmt.Errorf("Bot Token and Chat ID are required")
	}

	params := url.Values{}
	params.Set("chats", chatID)
	if f["silent"] == "true" {
		params.Set("notification", "no")
	}

	return fmt.Sprintf("telegram://%s@telegram?%s", token, params.Encode()), nil
}

// discord://token@webhookID[?username=...]
// Input: full webhook URL https://discord.com/api/webhooks/{id}/{token}
func buildDiscordURL(f map[string]string) (string, error) {
	webhookURL := strings.TrimSpace(f["webhook_url"])
	if webhookURL == "" {
		return "", fmt.Errorf("Discord Webhook URL is required")
	}

	trimmed := strings.TrimRight(webhookURL, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid Discord webhook URL format")
	}
	token := parts[len(parts)-1]
	id := parts[len(parts)-2]

	if token == "" || id == "" {
		return "", fmt.Errorf("could not extract webhook ID and token from URL")
	}

	u := fmt.Sprintf("discord://%s@%s", token, id)
	if f["username"] != "" {
		params := url.Values{}
		params.Set("username", f["username"])
		u += "?" + params.Encode()
	}
	return u, nil
}

// smtp://[user:pass@]host:port/?from=addr&to=addr[&useStartTLS=yes|no]
func buildEmailURL(f map[string]string) (string, error) {
	host := strings.TrimSpace(f["host"])
	port := strings.TrimSpace(f["port"])
	from := strings.TrimSpace(f["from"])
	to := strings.TrimSpace(f["to"])
	if host == "" || port == "" || from == "" || to == "" {
		return "", fmt.Errorf("Hostname, Port, From, and To are required")
	}

	userinfo := ""
	if f["username"] != "" {
		userinfo = url.PathEscape(f["username"])
		if f["password"] != "" {
			userinfo += ":" + url.PathEscape(f["password"])
		}
		userinfo += "@"
	}

	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)

	switch f["security"] {
	case "none":
		params.Set("useStartTLS", "no")
	case "ssl":
		params.Set("encryption", "ssl")
	default:
		params.Set("useStartTLS", "yes")
	}

	return fmt.Sprintf("smtp://%s%s:%s/?%s", userinfo, host, port, params.Encode()), nil
}

// generic+https://example.com/path  or  generic://example.com/path
func buildGenericURL(f map[string]string) (string, error) {
	webhookURL := strings.TrimSpace(f["webhook_url"])
	if webhookURL == "" {
		return "", fmt.Errorf("Webhook URL is required")
	}

	if strings.HasPrefix(webhookURL, "generic+") || strings.HasPrefix(webhookURL, "generic://") {
		return webhookURL, nil
	}
	if strings.HasPrefix(webhookURL, "https://") || strings.HasPrefix(webhookURL, "http://") {
		return "generic+" + webhookURL, nil
	}
	return "generic+https://" + webhookURL, nil
}
