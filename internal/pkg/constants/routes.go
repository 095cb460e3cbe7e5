package constants

// Static route constants
const (
	APIV1Route       = "/api/v1"
	AdminAPIRoute    = "/api/v1/admin"
	PublicAPIRoute   = "/api/public"
	PublicAPIV1Route = "/v1"
)
