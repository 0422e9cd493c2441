package models

// SendEmailRequest is the contact form payload posted by the site
type SendEmailRequest struct {
	Subject string `json:"subject" binding:"required,max=300"`
	HTML    string `json:"html" binding:"required,max=100000"`
}

// ProviderEmail is the body sent to the email provider
type ProviderEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// ProviderError is the error shape returned by the email provider
type ProviderError struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// SendEmailResult carries the provider's raw success body and its media type
type SendEmailResult struct {
	Body        []byte
	ContentType string
}
