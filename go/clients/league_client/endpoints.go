package league_client

const (
	// Default game key
	DefaultGameKey = "root"

	// Unscoped endpoints
	GamesEndpoint = "/api/games"

	// Game-scoped endpoints
	GroupsEndpoint        = "/groups"
	PlayersEndpoint       = "/players"
	LeaguesEndpoint       = "/leagues"
	MatchesEndpoint       = "/matches"
	ActiveMatchesEndpoint = "/matches/active"

	// Match sub-resources
	StartPath          = "/start"
	FinishPath         = "/finish"
	DraftPath          = "/draft"
	DraftPickPath      = "/draft/pick"
	DraftBansPath      = "/draft/bans"
	DraftResetPickPath = "/draft/reset-pick"
	RacePickPath       = "/race-pick"
	RacePickResetPath  = "/race-pick/reset"
	LandmarksBanPath   = "/landmarks/ban"
	LandmarksManPath   = "/landmarks/manual"
	SummaryPath        = "/summary"
	DescriptionPath    = "/description"
	RankedPath         = "/ranked"
	NamePath           = "/name"

	// Player clock and score
	PlayerTimePath    = "/time"
	PlayerSetTimePath = "/set-time"
	PlayerScorePath   = "/score"

	// League sub-resources
	StandingsPath = "/standings"

	// Headers
	AcceptHeader = "Accept"
	JSONMimeType = "application/json"
)
