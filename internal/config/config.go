package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Koyomi/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Koyomi"
	AppID             = "com.github.tartampluch.go-koyomi"
	KeyringService    = "com.github.tartampluch.go-koyomi"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvFileName       = ".env"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the history database.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagEnv          = "env"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescEnv      = "Path to a .env file (optional)"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvPort           = "KOYOMI_PORT"
	EnvBindAddr       = "KOYOMI_BIND_ADDR"
	EnvHistoryDriver  = "KOYOMI_HISTORY_DRIVER"
	EnvHistoryPath    = "KOYOMI_HISTORY_PATH"
	EnvHistoryMax     = "KOYOMI_HISTORY_MAX"
	EnvHolidayCSVURL  = "KOYOMI_HOLIDAY_CSV_URL"
	EnvHolidayCSVPath = "KOYOMI_HOLIDAY_CSV_PATH"
	EnvCustomHolidays = "KOYOMI_CUSTOM_HOLIDAYS_FILE"
	EnvContactsMode   = "KOYOMI_CONTACTS_MODE"
	EnvContactsURL    = "KOYOMI_CONTACTS_URL"
	EnvContactsPath   = "KOYOMI_CONTACTS_PATH"
	EnvContactsUser   = "KOYOMI_CONTACTS_USER"
	EnvRefreshMin     = "KOYOMI_REFRESH_MIN"
	EnvReminder       = "KOYOMI_REMINDER_TRIGGER"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	HistoryMemory     = "memory"
	HistorySQLite     = "sqlite"
	HistoryDBFile     = "history.db"
	DefaultPort       = "18080"
	DefaultRefreshMin = 60
	DefaultLeapYear   = 2000 // Leap year fallback for dates like --02-29
	UIDSalt           = "go-koyomi-v1-"
	DisabledInterval  = 0

	// MaxOccurrences is the largest recurrence result the API accepts.
	MaxOccurrences = 1000

	// HistoryMaxItems is the default ring-buffer size of the history store.
	HistoryMaxItems = 50

	// DefaultAnniversaryYears is the yearly horizon used when the caller omits it.
	DefaultAnniversaryYears = 50

	// MaxAnniversaryYears caps the yearly horizon of the anniversary endpoint.
	MaxAnniversaryYears = 200

	// DefaultTimezone reads wall-clock input that names no zone.
	DefaultTimezone = "Asia/Tokyo"

	// MaxWorkShifts caps the records of one work-hours summary.
	MaxWorkShifts = 400

	// MaxLeapYearSpan caps the from..to range of the leap-year listing.
	MaxLeapYearSpan = 10000

	// FeedYearsAround is the number of years generated on each side of the current year.
	FeedYearsAround = 1
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion     = "2.0"
	ICalProdid      = "-//go-koyomi//JP"
	ICalCalName     = "日本の祝日"
	ICalMethod      = "PUBLISH"
	ICalScale       = "GREGORIAN"
	ICalDomain      = "gokoyomi"
	ICalStatus      = "CONFIRMED"
	ICalTransparent = "TRANSPARENT"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropDescription = "DESCRIPTION"
	PropStatus      = "STATUS"
	PropTransp      = "TRANSP"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropAction      = "ACTION"
	PropTrigger     = "TRIGGER"

	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 24 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when there are no events.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Cabinet Office CSV layout (e.g. 2025/1/1)
	DateFormatSlash = "2006/1/2"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"

	// CSV
	CSVHeaderDate    = "日付"
	CSVHeaderWeekday = "曜日"
	CSVHeaderTitle   = "タイトル"
	EncodingSJIS     = "sjis"
	ExportBaseName   = "recurrence"
	ExtICS           = ".ics"
	ExtCSV           = ".csv"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB
	MaxRequestBodySize  = 1 * 1024 * 1024
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

const (
	RouteHealth   = "/healthz"
	RouteMetrics  = "/metrics"
	RouteFeed     = "/calendar.ics"
	RouteAPI      = "/api/v1"
	RouteDiff     = "/diff"
	RouteAge      = "/age"
	RouteShift    = "/shift"
	RouteBusiness = "/business-days"
	RouteHolidays = "/holidays"
	RouteHolCheck = "/holidays/check"
	RouteWaToEra  = "/wareki/to"
	RouteWaFrom   = "/wareki/from"
	RouteRecur    = "/recurrence"
	RouteMoon     = "/moon"
	RouteMoonCal  = "/moon/calendar"
	RouteMoonList = "/moon/phases"
	RouteSekki    = "/sekki"
	RouteRokuyo   = "/rokuyo"
	RouteStats    = "/stats"
	RouteCompare  = "/compare"
	RouteAnniv    = "/anniversaries"
	RouteLeap     = "/leap-years"
	RouteHistory  = "/history"
	RouteHistItem = "/history/{id}"
	RouteContacts = "/contacts"
	RouteTZConv   = "/timezone/convert"
	RouteTZZones  = "/timezone/zones"
	RouteTimeDiff = "/time/diff"
	RouteTimeAdd  = "/time/add"
	RouteWork     = "/work-hours"
	RouteFormat   = "/format"

	FormatJSON = "json"
	FormatICS  = "ics"
	FormatCSV  = "csv"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderCacheControl       = "Cache-Control"
	HeaderETag               = "ETag"
	HeaderLastModified       = "Last-Modified"
	HeaderRetryAfter         = "Retry-After"
	HeaderAllow              = "Allow"
	HeaderXContentType       = "X-Content-Type-Options"
	HeaderUserAgent          = "User-Agent"
	HeaderIfNoneMatch        = "If-None-Match"
	HeaderIfModifiedSince    = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeCSV             = "text/csv; charset=utf-8"
	MimeCSVShiftJIS     = "text/csv; charset=Shift_JIS"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`

	// FormatAttachment expects a file name.
	FormatAttachment = `attachment; filename="%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrWebURLEmpty     = "configuration error: web URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrModeUnsupport   = "configuration error: unsupported source mode"
	ErrHistoryDriver   = "configuration error: unsupported history driver"
	ErrHistoryMax      = "configuration error: history size must be positive"
	ErrRefreshNegative = "configuration error: refresh interval must not be negative"
	ErrEnvFile         = "failed to load env file"
	ErrConfigInvalid   = "invalid configuration"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrCSVEncode       = "failed to encode CSV data"
	ErrHolidayCSV      = "failed to read holiday CSV"
	ErrHolidayRow      = "malformed holiday CSV row"
	ErrCustomHolidays  = "failed to load custom holidays"
	ErrDateParse       = "unable to parse date"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrHistoryOpen     = "failed to open history database"
	ErrHistoryMigrate  = "failed to migrate history database"
	ErrHistoryWrite    = "failed to write history item"
	ErrHistoryRead     = "failed to read history items"
	ErrHistoryEncode   = "failed to encode history payload"
	ErrHistoryNotFound = "history item not found"
	ErrSyncFailed      = "synchronization failed"
	ErrRequestCreate   = "failed to create request"
	ErrNetwork         = "network error during fetch"
	ErrHTTPStatus      = "server returned unexpected status"
	ErrContactsSource  = "failed to read contacts"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgOK           = "ok"

	// Error codes of the JSON envelope.
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeTooMany      = "TOO_MANY_OCCURRENCES"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "UNAVAILABLE"
	CodeInvalidRange = "INVALID_RANGE"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyErrInvalidDate  = "err_invalid_date"
	TKeyErrInvalidRange = "err_invalid_range"
	TKeyErrInvalidParam = "err_invalid_param" // Requires Name
	TKeyErrInvalidEra   = "err_invalid_era"
	TKeyErrPattern      = "err_invalid_pattern"
	TKeyErrTooMany      = "err_too_many_occurrences" // Requires Max
	TKeyErrNotFound     = "err_not_found"
	TKeyErrInternal     = "err_internal"
	TKeyErrNoDates      = "err_no_valid_dates"
	TKeyErrUnavailable  = "err_unavailable"
	TKeyEvtRecurrence   = "event_recurrence"    // Requires Count
	TKeyEvtBirthday     = "event_birthday"      // Requires Name
	TKeyEvtBirthdayAge  = "event_birthday_age"  // Requires Name, Age
	TKeyFeedName        = "feed_name"
	TKeyHistDiff        = "history_diff"        // Requires Start, End
	TKeyHistBusiness    = "history_business"    // Requires Start, End
	TKeyHistRecurrence  = "history_recurrence"  // Requires Count
	TKeyHistWareki      = "history_wareki"      // Requires Value
	TKeyHistAge         = "history_age"         // Requires Birth
	TKeyHistAnniversary = "history_anniversary" // Requires Start
	TKeyHistTimeCalc    = "history_time_calc"   // Requires Start, End
	TKeyHistWorkHours   = "history_work_hours"  // Requires Count
)

// DefaultLanguage is the only locale shipped.
const DefaultLanguage = "ja"

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary    = "誕生日: %s"
	FallbackSummaryAge = "誕生日: %s (%d歳)"
	FallbackName       = "不明"
	FallbackEventTitle = "予定"

	MsgSyncSuccess   = "Synchronization completed successfully."
	MsgSyncStarted   = "Synchronization started..."
	MsgRefreshOff    = "Periodic refresh disabled"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgAppStop       = "Application stopped gracefully"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgSkippedRow    = "Skipping malformed holiday row"
	MsgGenSuccess    = "Calendar generation successful"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgOverlayLoaded = "Official holiday data installed"
	MsgCustomLoaded  = "Custom holidays loaded"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgRequest       = "HTTP request"
	MsgPanic         = "Recovered from panic"
	MsgHistoryFail   = "Failed to record history"
	MsgHistoryOpened = "History store opened"
	MsgHistoryChmod  = "Could not restrict history file permissions"
	MsgTooMany       = "Recurrence rejected: too many occurrences"
	MsgFetchStart    = "Initiating download"
	MsgFetchStatus   = "Server returned error status"
	MsgFetchBody     = "Downloading"
	MsgBdayToday     = "Birthday today"
	MsgHolidaysRead  = "Official holiday CSV parsed"
)

// -----------------------------------------------------------------------------
// History Types
// -----------------------------------------------------------------------------

const (
	HistTypeDiff        = "diff"
	HistTypeAge         = "age"
	HistTypeBusiness    = "business"
	HistTypeWareki      = "wareki"
	HistTypeRecurrence  = "recurrence"
	HistTypeAnniversary = "anniversary"
	HistTypeTimeCalc    = "time-calc"
	HistTypeWorkHours   = "work-hours"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyYears     = "years"
	LogKeyLine      = "line"
	LogKeyDuration  = "duration_ms"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRequestID = "request_id"
	LogKeyDriver    = "driver"
	LogKeyMax       = "max"
	LogKeyPanic     = "panic"
	LogKeyDOB       = "dob"
	LogKeyContentLn = "content_length"
	LogKeyRows      = "rows"
	LogKeyHolidays  = "holidays"
	LogKeyContacts  = "contacts"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompHistory = "history"
	CompHoliday = "holiday"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace   = "koyomi"
	MetricRequests     = "http_requests_total"
	MetricDuration     = "http_request_duration_seconds"
	MetricSyncs        = "sync_runs_total"
	MetricLabelRoute   = "route"
	MetricLabelMethod  = "method"
	MetricLabelStatus  = "status"
	MetricLabelOutcome = "outcome"
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
)
