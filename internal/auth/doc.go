// Package auth provides HTTP middleware for the dcrcalc server.
//
// APIKey(mode, header, key, next) wraps a handler so that, in "apikey" mode,
// every request must carry header set to key. Requests without a valid key get
// 401 Unauthorized with {"error": "invalid api key"}.
//
// When mode is not "apikey" or the key is empty, next is returned unchanged
// so local runs need no credentials.
package auth
