// Package rest exposes the gateway's synchronous operations over HTTP.
//
// Each route runs one upstream conversation to completion and returns
// the accumulated result as JSON. Failures share a single error shape
// with errorMsg, errorCode and id fields: pool exhaustion maps to 429,
// everything else the gateway reports maps to 400.
package rest
