// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthDeactivated        = "auth.deactivated"
	KeyAuthLogoutSuccess      = "auth.logout_success"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserProfileUpdated = "user.profile_updated"

	// Songs
	KeySongNotFound          = "song.not_found"
	KeySongInvalidStatus     = "song.invalid_status"
	KeySongDurationInvalid   = "song.duration_invalid"
	KeyManagedWriterNotFound = "managed_writer.not_found"

	// Earnings and payouts
	KeyEarningNotFound         = "earning.not_found"
	KeyPayoutNotFound          = "payout.not_found"
	KeyPayoutInvalidTransition = "payout.invalid_transition"
	KeyPayoutFailed            = "payout.failed"

	// Sync deals
	KeySyncDealNotFound    = "sync_deal.not_found"
	KeySyncDealInvalidMove = "sync_deal.invalid_status"

	// Chat
	KeyChatSessionNotFound = "chat_session.not_found"

	// Admin
	KeyAdminAccessDenied    = "admin.access_denied"
	KeyAdminSettingsUpdated = "admin.settings_updated"

	// Functions
	KeyEmailMissingFields = "email.missing_fields"
	KeyEmailSent          = "email.sent"

	// AI
	KeyAIDisabled        = "ai.disabled"
	KeyAISummarizeFailed = "ai.summarize_failed"
	KeyAIChatFailed      = "ai.chat_failed"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileInvalidType  = "file.invalid_type"
	KeyFileTooLarge     = "file.too_large"

	// Rate limiting
	KeyRateLimited = "rate.limited"
)
