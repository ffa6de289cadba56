/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application
// error code. The key is the error code (int), and the value contains the user
// message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Request body is not valid JSON.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrFormParseFailed:      {Code: ErrFormParseFailed, Message: "Failed to process uploaded data.", Status: http.StatusBadRequest},
	ErrPayloadTooLarge:      {Code: ErrPayloadTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Chat and Message Errors
	ErrMessageEmpty:       {Code: ErrMessageEmpty, Message: "Message cannot be empty.", Status: http.StatusBadRequest},
	ErrMessageTooLong:     {Code: ErrMessageTooLong, Message: "Message cannot exceed %d characters.", Status: http.StatusBadRequest},
	ErrImageURLMissing:    {Code: ErrImageURLMissing, Message: "Image URL cannot be empty.", Status: http.StatusBadRequest},
	ErrFileInfoIncomplete: {Code: ErrFileInfoIncomplete, Message: "File information is incomplete.", Status: http.StatusBadRequest},
	ErrNotInRoom:          {Code: ErrNotInRoom, Message: "User information not found. Please sign in again.", Status: http.StatusUnauthorized},

	// 3xxx: User, Token, and Security Errors
	ErrMissingToken:       {Code: ErrMissingToken, Message: "Access token is missing.", Status: http.StatusUnauthorized},
	ErrInvalidToken:       {Code: ErrInvalidToken, Message: "Invalid access token.", Status: http.StatusUnauthorized},
	ErrExpiredToken:       {Code: ErrExpiredToken, Message: "Access token has expired.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusUnauthorized},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrUsernameTaken:      {Code: ErrUsernameTaken, Message: "Username is already taken.", Status: http.StatusConflict},
	ErrEmailTaken:         {Code: ErrEmailTaken, Message: "Email is already in use.", Status: http.StatusConflict},
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Username must be 2-20 characters of letters, digits, underscores, or CJK characters.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Password must be at least 6 characters.", Status: http.StatusBadRequest},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "Email address is not valid.", Status: http.StatusBadRequest},
	ErrOldPasswordInvalid: {Code: ErrOldPasswordInvalid, Message: "Current password is incorrect.", Status: http.StatusUnauthorized},

	// 4xxx: File and Filesystem Errors
	ErrNoFileUploaded:    {Code: ErrNoFileUploaded, Message: "No file was uploaded.", Status: http.StatusBadRequest},
	ErrFileTypeForbidden: {Code: ErrFileTypeForbidden, Message: "Executable files are not allowed.", Status: http.StatusBadRequest},
	ErrOnlyImagesAllowed: {Code: ErrOnlyImagesAllowed, Message: "Only image files are allowed.", Status: http.StatusBadRequest},
	ErrFileNotFound:      {Code: ErrFileNotFound, Message: "File not found.", Status: http.StatusNotFound},
	ErrPathNotFound:      {Code: ErrPathNotFound, Message: "Path not found: %s", Status: http.StatusNotFound},
	ErrNotAFile:          {Code: ErrNotAFile, Message: "The given path is not a file.", Status: http.StatusBadRequest},
	ErrNotAFolder:        {Code: ErrNotAFolder, Message: "The given path is not a folder.", Status: http.StatusBadRequest},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File storage failed. Please try again.", Status: http.StatusInternalServerError},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
