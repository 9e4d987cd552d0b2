package apicommon

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/stats"
	"github.com/surveypro/saas-backend/taking"
)

// LoginResponse represents the response to a successful login or
// registration request.
type LoginResponse struct {
	// JWT authentication token
	Token string `json:"token"`

	// Token expiration time
	Expirity time.Time `json:"expirity"`
}

// CompanyLoginResponse is returned by the company register and login
// endpoints.
type CompanyLoginResponse struct {
	LoginResponse
	Company *db.Company `json:"company"`
}

// UserLoginResponse is returned by the user register and login endpoints.
type UserLoginResponse struct {
	LoginResponse
	User *db.User `json:"user"`
}

// RegisterCompanyRequest signs up a company. Package defaults to "none".
type RegisterCompanyRequest struct {
	Name     string         `json:"name" validate:"required,max=100"`
	Email    string         `json:"email" validate:"required"`
	Password string         `json:"password"`
	Package  db.PackageTier `json:"package" validate:"omitempty,packagetier"`
}

// RegisterUserRequest signs up a survey taker.
type RegisterUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password"`
}

// LoginRequest is the body of both login endpoints.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password"`
}

// QuestionInfo is a question as sent by the survey builder.
type QuestionInfo struct {
	ID       string   `json:"id"`
	Type     string   `json:"type" validate:"required,questiontype"`
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
}

// SurveyRequest creates a survey. PackageType defaults to the subscription
// of the company and IsActive to true.
type SurveyRequest struct {
	Title             string          `json:"title" validate:"required,max=200"`
	Description       string          `json:"description"`
	Questions         []QuestionInfo  `json:"questions" validate:"required,dive"`
	ExpiresAt         *time.Time      `json:"expiresAt"`
	IsActive          *bool           `json:"isActive"`
	PackageType       db.PackageTier  `json:"packageType" validate:"omitempty,packagetier"`
	RewardPerResponse decimal.Decimal `json:"rewardPerResponse" validate:"gte=0"`
}

// SurveyUpdateRequest edits a survey. Only the fields present are changed.
type SurveyUpdateRequest struct {
	Title             *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description       *string          `json:"description"`
	Questions         []QuestionInfo   `json:"questions" validate:"omitempty,dive"`
	ExpiresAt         *time.Time       `json:"expiresAt"`
	IsActive          *bool            `json:"isActive"`
	PackageType       *db.PackageTier  `json:"packageType" validate:"omitempty,packagetier"`
	RewardPerResponse *decimal.Decimal `json:"rewardPerResponse" validate:"omitempty,gte=0"`
}

// SurveyDetails is a survey along with its per question analytics.
type SurveyDetails struct {
	*db.Survey
	Analytics []stats.QuestionAnalytics `json:"analytics"`
}

// ShareInfo is what the survey share page encodes in its QR code.
type ShareInfo struct {
	SurveyID string `json:"surveyId"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

// SurveyList is the public list of surveys along with the public summary.
type SurveyList struct {
	Surveys []db.Survey   `json:"surveys"`
	Summary stats.Summary `json:"summary"`
}

// CompanyProfile is the logged company with its survey statistics.
type CompanyProfile struct {
	Company *db.Company        `json:"company"`
	Package *db.PaymentPackage `json:"package"`
	Stats   stats.CompanyStats `json:"stats"`
	Surveys []db.Survey        `json:"surveys"`
}

// UserProfile is the logged user with their dashboard counters.
type UserProfile struct {
	User      *db.User             `json:"user"`
	Dashboard *stats.UserDashboard `json:"dashboard"`
}

// PackageList is the package catalog.
type PackageList struct {
	Packages []db.PaymentPackage `json:"packages"`
}

// PurchaseResponse reports the outcome of a package purchase. When the
// payment is pending, CheckoutURL is where the company completes it.
type PurchaseResponse struct {
	ReceiptID   string          `json:"receiptId"`
	Package     db.PackageTier  `json:"package"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
	Company     *db.Company     `json:"company,omitempty"`
}

// FavoriteResponse reports the favorite state of a survey after a toggle.
type FavoriteResponse struct {
	SurveyID string `json:"surveyId"`
	Favorite bool   `json:"favorite"`
}

// AnswerRequest answers a question of a taking session. An empty values
// list clears the answer.
type AnswerRequest struct {
	QuestionID string   `json:"questionId" validate:"required"`
	Values     []string `json:"values"`
}

// RespondentRequest carries the contact data asked before submitting.
type RespondentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TakingInfo is the state of a taking session as returned by every taking
// endpoint.
type TakingInfo struct {
	SessionID   string               `json:"sessionId"`
	SurveyID    string               `json:"surveyId"`
	Title       string               `json:"title"`
	CompanyName string               `json:"companyName"`
	Reward      decimal.Decimal      `json:"reward"`
	Progress    taking.Progress      `json:"progress"`
	Question    *db.Question         `json:"question,omitempty"`
	Answers     map[string]db.Answer `json:"answers"`
	CanProceed  bool                 `json:"canProceed"`
	ResponseID  string               `json:"responseId,omitempty"`
}
