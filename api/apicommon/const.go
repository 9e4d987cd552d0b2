// Package apicommon provides common types, constants, and helper functions for the API.
package apicommon

import "time"

// MetadataKey is a type to define the key for the metadata stored in the
// context.
type MetadataKey string

const (
	// CompanyMetadataKey is the key used to store the company in the context.
	CompanyMetadataKey MetadataKey = "company"
	// UserMetadataKey is the key used to store the user in the context.
	UserMetadataKey MetadataKey = "user"
)

const (
	// CompanyIDClaim is the JWT claim holding the id of a logged company.
	CompanyIDClaim = "companyId"
	// UserIDClaim is the JWT claim holding the id of a logged user.
	UserIDClaim = "userId"
)

// JWTExpiration is how long a login token is valid.
const JWTExpiration = 360 * time.Hour // 15 days
