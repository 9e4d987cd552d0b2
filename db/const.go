package db

// Namespace prefixes every persisted key in every backend.
const Namespace = "surveyPro_"

// Snapshot keys. Each one holds the full JSON snapshot of a collection or
// session pointer.
const (
	SurveysKey        = "surveys"
	CompaniesKey      = "companies"
	CurrentCompanyKey = "currentCompany"
	UsersKey          = "users"
	CurrentUserKey    = "currentUser"
	CredentialsKey    = "credentials"
)
