package apperrors

import "errors"

// ErrNotFound запись отсутствует в хранилище
var ErrNotFound = errors.New("resource not found")

// ErrValidation данные не прошли проверку на границе хранилища
var ErrValidation = errors.New("validation error")

// ErrUnauthorized нет сессии или пользователь не администратор
var ErrUnauthorized = errors.New("unauthorized")

// ErrUpstream внешний API курсов вернул ошибку
var ErrUpstream = errors.New("upstream price source failed")
