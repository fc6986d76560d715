package config

import (
	"fmt"
	"strconv"
	"time"
)

const (
	defaultUIAddr     = ":3000"
	defaultAPIURL     = "http://localhost:4000"
	defaultUIPageSize = 10
	defaultAPITimeout = 10 * time.Second
)

type UI struct {
	HTTPAddr          string
	APIURL            string
	PageSize          int
	APITimeout        time.Duration
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

func LoadUI() (UI, error) {
	cfg := UI{
		HTTPAddr:          getEnv("UI_ADDR", defaultUIAddr),
		APIURL:            getEnv("API_URL", defaultAPIURL),
		PageSize:          defaultUIPageSize,
		APITimeout:        defaultAPITimeout,
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	if raw := getEnv("UI_PAGE_SIZE", ""); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return UI{}, fmt.Errorf("UI_PAGE_SIZE must be a positive integer")
		}
		cfg.PageSize = size
	}

	return cfg, nil
}
