package server

// Routes are relative to APP_BASENAME.
const (
	RouteHome           = "/"
	RouteConfig         = "/config"
	RouteStatic         = "/static/{file}"
	RouteCallback       = "/auth/callback"
	RouteLogout         = "/auth/logout"
	RouteReset          = "/auth/reset"
	RouteRestricted     = "/restricted"
	RouteRestrictedTest = "/restricted/test"
	RouteReportLatest   = "/reportlasts"
	RouteRefreshDevices = "/refreshdevices"
)
