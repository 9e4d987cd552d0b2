package api

const (
	// pingEndpoint answers with a dot while the server is up
	pingEndpoint = "/ping"

	// package routes

	// GET /packages to list the package catalog
	packagesEndpoint = "/packages"
	// POST /packages/{tier}/purchase to buy a package for the logged company
	packagePurchaseEndpoint = "/packages/{tier}/purchase"

	// company routes

	// POST /companies to register a new company
	companiesEndpoint = "/companies"
	// POST /companies/login to login a company and get a JWT token
	companiesLoginEndpoint = "/companies/login"
	// POST /companies/logout to close the company session
	companiesLogoutEndpoint = "/companies/logout"
	// GET /companies/me to get the logged company profile
	companiesMeEndpoint = "/companies/me"
	// GET /companies/me/dashboard to get the company dashboard
	companiesDashboardEndpoint = "/companies/me/dashboard"

	// survey routes

	// GET /surveys to list the active surveys, POST to create one
	surveysEndpoint = "/surveys"
	// GET /surveys/{surveyId} to get a survey with its analytics, PUT to
	// update it
	surveyEndpoint = "/surveys/{surveyId}"
	// GET /surveys/{surveyId}/share to get the public link of a survey
	surveyShareEndpoint = "/surveys/{surveyId}/share"
	// GET /surveys/{surveyId}/qr to get the QR code of the public link as a
	// PNG image
	surveyQREndpoint = "/surveys/{surveyId}/qr"

	// survey taking routes

	// POST /take/{surveyId} to start taking a survey
	takeEndpoint = "/take/{surveyId}"
	// GET /take/{surveyId}/{sessionId} to get the state of a taking session
	takeSessionEndpoint = "/take/{surveyId}/{sessionId}"
	// POST /take/{surveyId}/{sessionId}/answer to answer a question
	takeAnswerEndpoint = "/take/{surveyId}/{sessionId}/answer"
	// POST /take/{surveyId}/{sessionId}/next to move to the next question
	takeNextEndpoint = "/take/{surveyId}/{sessionId}/next"
	// POST /take/{surveyId}/{sessionId}/previous to move back one question
	takePreviousEndpoint = "/take/{surveyId}/{sessionId}/previous"
	// POST /take/{surveyId}/{sessionId}/respondent to set the respondent
	// contact data
	takeRespondentEndpoint = "/take/{surveyId}/{sessionId}/respondent"
	// POST /take/{surveyId}/{sessionId}/submit to submit the response
	takeSubmitEndpoint = "/take/{surveyId}/{sessionId}/submit"

	// user routes

	// POST /users to register a new user
	usersEndpoint = "/users"
	// POST /users/login to login a user and get a JWT token
	usersLoginEndpoint = "/users/login"
	// POST /users/logout to close the user session
	usersLogoutEndpoint = "/users/logout"
	// GET /users/me to get the logged user profile
	usersMeEndpoint = "/users/me"
	// GET /users/me/dashboard?tab=&search= to get the user dashboard
	usersDashboardEndpoint = "/users/me/dashboard"
	// PUT /users/me/favorites/{surveyId} to toggle a favorite survey
	usersFavoriteEndpoint = "/users/me/favorites/{surveyId}"

	// stripe routes

	// POST /stripe/webhook to receive Stripe events
	stripeWebhookEndpoint = "/stripe/webhook"
)
