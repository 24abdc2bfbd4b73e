package templates

import "time"

// Branding is filled by the worker from config; jobs only carry user data.
type Branding struct {
	AppName     string
	CompanyName string
	SupportURL  string
	LoginURL    string
}

// Data keys shared between the publisher and the templates.
const (
	KeyName    = "Name"
	KeyAccount = "Account"
	KeyEmail   = "Email"
	KeyChanges = "Changes"
	KeyTime    = "Time"
)

func WelcomeData(name, account, email string) map[string]any {
	return map[string]any{
		KeyName:    name,
		KeyAccount: account,
		KeyEmail:   email,
	}
}

// AccountUpdatedData lists which account fields changed, e.g. "email", "password".
func AccountUpdatedData(name, account, email string, changes []string, at time.Time) map[string]any {
	return map[string]any{
		KeyName:    name,
		KeyAccount: account,
		KeyEmail:   email,
		KeyChanges: changes,
		KeyTime:    at.UTC().Format("02 January 2006, 15:04 MST"),
	}
}

// ApplyBranding copies the branding fields into data without overwriting job values.
func ApplyBranding(data map[string]any, b Branding) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	for k, v := range map[string]string{
		"AppName":     b.AppName,
		"CompanyName": b.CompanyName,
		"SupportURL":  b.SupportURL,
		"LoginURL":    b.LoginURL,
	} {
		if _, ok := data[k]; !ok {
			data[k] = v
		}
	}
	return data
}
