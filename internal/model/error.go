package model

import "errors"

var ErrorUserNotFound = errors.New("user not found")
var ErrorInvalidID = errors.New("invalid user id")
var ErrorInvalidName = errors.New("invalid user name")
var ErrorNameTaken = errors.New("user name already in use")
var ErrorCacheMiss = errors.New("cache miss")
var ErrorInvalidRule = errors.New("invalid validation rule")
var ErrorInvalidKeys = errors.New("invalid cache keys")
