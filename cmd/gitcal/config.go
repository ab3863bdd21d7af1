package main

import "time"

type appConfig struct {
	AppName string `default:"Git Calendar"`
	Env     string

	Server struct {
		Port      string `default:"3000"`
		Scheme    string `default:"dark"`
		Timezone  string
		WeekStart int

		// BaseURL is where rendered pages fetch the API from. Defaults to
		// the local listener.
		BaseURL    string
		// AllowLocal lets /repo?url= open file: repositories.
		AllowLocal bool
	}

	Repo struct {
		URL         string `default:"file:"`
		TmpDir      string `default:"./tmp"`
		Depth       int    `default:"5000"`
		TimeAllowed int64  `default:"18000"`
	}

	Store struct {
		Path string `default:"gitcal.db"`
	}

	Refresh struct {
		// Cron is a robfig/cron spec; empty disables refreshing.
		Cron    string
		Timeout time.Duration `default:"5m"`
	}

	Limiter struct {
		Max        int           `default:"20"`
		Expiration time.Duration `default:"30s"`
	}

	Feed struct {
		Window time.Duration `default:"8760h"`
	}

	Report struct {
		Width    int
		Height   int
		Timeout  time.Duration
		ExecPath string
	}
}
