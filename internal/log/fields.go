package log

// Common field names for structured logging
const (
	FieldComponent        = "component"
	FieldRequestID        = "request_id"
	FieldClientIP         = "client_ip"
	FieldMethod           = "method"
	FieldPath             = "path"
	FieldQuery            = "query"
	FieldStatusCode       = "status_code"
	FieldDuration         = "duration_ms"
	FieldUserAgent        = "user_agent"
	FieldReferer          = "referer"
	FieldSuccess          = "success"
	FieldError            = "error"
	FieldErrorType        = "error_type"
	FieldOperation        = "operation"
	FieldUserID           = "user_id"
	FieldBudgetID         = "budget_id"
	FieldEntity           = "entity"
	FieldEntityID         = "entity_id"
	FieldNotificationKind = "notification_kind"
	FieldRecipient        = "recipient"
	FieldMessageID        = "message_id"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentAuth        = "auth"
	ComponentBudget      = "budget"
	ComponentInvitation  = "invitation"
	ComponentTransaction = "transaction"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentMail        = "mail"
	ComponentCache       = "cache"
	ComponentSecurity    = "security"
	ComponentRateLimit   = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpInvite   = "invite"
	OpRespond  = "respond"
	OpRegister = "register"
	OpNotify   = "notify"
	OpMigrate  = "migrate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeAuth          = "auth_error"
	ErrorTypeForbidden     = "forbidden_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithActor adds the authenticated user. Zero ids are skipped so anonymous
// requests do not log a bogus user.
func (f LogFields) WithActor(userID int64) LogFields {
	if userID != 0 {
		f[FieldUserID] = userID
	}
	return f
}

// WithEntity adds the audited entity a mutation touched.
func (f LogFields) WithEntity(budgetID int64, entity string, entityID int64) LogFields {
	f[FieldBudgetID] = budgetID
	f[FieldEntity] = entity
	f[FieldEntityID] = entityID
	return f
}

// WithNotification adds the fields identifying an outgoing email.
func (f LogFields) WithNotification(kind, recipient, messageID string) LogFields {
	f[FieldNotificationKind] = kind
	f[FieldRecipient] = recipient
	if messageID != "" {
		f[FieldMessageID] = messageID
	}
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	if referer != "" {
		f[FieldReferer] = referer
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
