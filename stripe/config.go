package stripe

// DefaultCurrency is the currency package prices are charged in.
const DefaultCurrency = "usd"

// Config holds the complete Stripe configuration
type Config struct {
	APIKey        string `yaml:"api_key" json:"api_key"`
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
	Currency      string `yaml:"currency" json:"currency"`
	// SuccessURL and CancelURL are the web app pages the hosted checkout
	// returns to.
	SuccessURL string `yaml:"success_url" json:"success_url"`
	CancelURL  string `yaml:"cancel_url" json:"cancel_url"`
}
