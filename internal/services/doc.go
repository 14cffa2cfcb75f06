// Package services defines the [Service] interface for playlist operations and implements it for SoundCloud.
//
// # SoundCloud Implementation
//
// [SoundCloudService] wraps a [soundcloud.Client]. The client owns authentication: requests carry the
// stored access token, and a 401 triggers one refresh and retry before an error is returned.
// [SoundCloudService.Authenticate] performs an explicit token exchange.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAuthFailed] : token exchange failed
//   - [shared.ErrNotAuthenticated] : the API answered 401 (via [soundcloud.ResponseError])
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
//   - [shared.ErrTrackNotFound] : search returned nothing
//   - [shared.ErrUnexpectedResponse] : the response did not have the expected shape
//
// # API Mappings
//
// Responses are read through [soundcloud.HashResponse] accessors and mapped to models.Playlist and models.Track.
// List endpoints may answer with a bare array or with a {"collection": [...]} page; both are accepted.
// Track artists come from user.username unless publisher metadata names one.
package services
