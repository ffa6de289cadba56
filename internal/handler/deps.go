package handler

import (
	"lanshare/internal/app/chat"
	"lanshare/internal/app/storage"
	"lanshare/internal/app/store"
	"lanshare/internal/configs"
)

// AppDeps bundles the shared dependencies the handlers need.
type AppDeps struct {
	Config  *configs.AppConfig
	Store   store.Store
	Uploads storage.Service
	Room    *chat.Room
}
