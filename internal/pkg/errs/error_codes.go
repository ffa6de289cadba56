/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrPayloadTooLarge indicates that the request body size exceeded the server limit.
	ErrPayloadTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Chat and Message Errors
const (
	// ErrMessageEmpty indicates that a text message had no content after trimming.
	ErrMessageEmpty = 2001

	// ErrMessageTooLong indicates that message content exceeded the maximum length.
	ErrMessageTooLong = 2002

	// ErrImageURLMissing indicates that an image message carried no image URL.
	ErrImageURLMissing = 2003

	// ErrFileInfoIncomplete indicates that a file message was missing its URL or filename.
	ErrFileInfoIncomplete = 2004

	// ErrNotInRoom indicates that the connection has no presence entry and must re-login.
	ErrNotInRoom = 2005
)

// 3xxx: User, Token, and Security Errors
const (
	// ErrMissingToken indicates that no access token was supplied.
	ErrMissingToken = 3001

	// ErrInvalidToken indicates a malformed token or a bad signature.
	ErrInvalidToken = 3002

	// ErrExpiredToken indicates that the token's embedded expiry has passed.
	ErrExpiredToken = 3003

	// ErrInvalidCredentials indicates a wrong username or password at login.
	ErrInvalidCredentials = 3004

	// ErrUnauthorized indicates the request requires an authenticated user.
	ErrUnauthorized = 3005

	// ErrUserNotFound indicates that the referenced user record does not exist.
	ErrUserNotFound = 3006

	// ErrUsernameTaken indicates a registration conflict on the username.
	ErrUsernameTaken = 3007

	// ErrEmailTaken indicates a registration or profile conflict on the email.
	ErrEmailTaken = 3008

	// ErrInvalidUsername indicates the username failed length or charset validation.
	ErrInvalidUsername = 3009

	// ErrInvalidPassword indicates the password failed length validation.
	ErrInvalidPassword = 3010

	// ErrInvalidEmail indicates the email failed format validation.
	ErrInvalidEmail = 3011

	// ErrOldPasswordInvalid indicates the current password did not match on change.
	ErrOldPasswordInvalid = 3012
)

// 4xxx: File and Filesystem Errors
const (
	// ErrNoFileUploaded indicates that a multipart request carried no file part.
	ErrNoFileUploaded = 4001

	// ErrFileTypeForbidden indicates an upload with a denylisted executable extension.
	ErrFileTypeForbidden = 4002

	// ErrOnlyImagesAllowed indicates a non-image upload on the image route.
	ErrOnlyImagesAllowed = 4003

	// ErrFileNotFound indicates that the requested uploaded file does not exist.
	ErrFileNotFound = 4004

	// ErrPathNotFound indicates that the requested filesystem path does not exist.
	ErrPathNotFound = 4005

	// ErrNotAFile indicates the path exists but is not a regular file.
	ErrNotAFile = 4006

	// ErrNotAFolder indicates the path exists but is not a directory.
	ErrNotAFolder = 4007

	// ErrFileStorageFailed indicates a storage backend failure while saving or reading.
	ErrFileStorageFailed = 4008
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
