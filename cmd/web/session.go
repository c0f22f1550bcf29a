package main

type sessionKey string

const (
	wizardIDSessionKey  = sessionKey("wizardID")
	toastKindSessionKey = sessionKey("toastKind")
	toastTextSessionKey = sessionKey("toastText")
)
