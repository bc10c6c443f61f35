package model

import "errors"

var ErrorRateLimited = errors.New("rate limited by platform")
var ErrorForbidden = errors.New("forbidden - check API permissions")
var ErrorEmptyPost = errors.New("empty post")
var ErrorEmptyThread = errors.New("empty thread")
var ErrorUnknownContentKind = errors.New("unknown content kind")
