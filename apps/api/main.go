package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/prefeitura-rio/gorio-admin/apps/api/echo"
	"github.com/prefeitura-rio/gorio-admin/core"
	"github.com/prefeitura-rio/gorio-admin/core/access"
	"github.com/prefeitura-rio/gorio-admin/core/cnae"
	"github.com/prefeitura-rio/gorio-admin/core/course"
	cachesvc "github.com/prefeitura-rio/gorio-admin/services/cache"
	"github.com/prefeitura-rio/gorio-admin/services/identity"
	logsvc "github.com/prefeitura-rio/gorio-admin/services/logger"
	"github.com/prefeitura-rio/gorio-admin/services/upstream"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	cacheLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "CACHE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	cacheLogger.Enable(!conf.Debug)

	for _, w := range conf.Warnings() {
		logger.Warn(w)
	}

	// set up access policy & token handling
	policy, err := loadPolicy(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading access policy: %v", err), err)
	}
	decoder, err := access.NewTokenDecoder(conf.Auth.PublicKey)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up token decoder: %v", err), err)
	}
	refresher := identity.NewProvider(conf.Auth, conf.Upstream.Timeout)

	// set up cache (optional)
	var cache cnae.Cache
	if conf.Redis.URL != "" {
		redisCache, err := cachesvc.NewRedisCache(conf.Redis.URL)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				cacheLogger.Error("Failed to close", err)
			}
		}()
		cache = redisCache
	}

	// set up services
	timeout := conf.Upstream.Timeout
	courseSvc := course.NewService(upstream.NewCourseAPI(conf.Upstream.CourseAPI, timeout), logger)
	cnaeSvc := cnae.NewService(upstream.NewRMI(conf.Upstream.RMIAPI, timeout), cache, conf.Redis.CNAETTL, cacheLogger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewInt("policyRules").Set(int64(len(policy.Rules())))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Policy:     policy,
			Decoder:    decoder,
			Refresher:  refresher,
			CourseSvc:  courseSvc,
			CNAESvc:    cnaeSvc,
			GorioAPI:   upstream.NewGorioAPI(conf.Upstream.GorioAPI, timeout),
			SearchAPI:  upstream.NewSearchAPI(conf.Upstream.SearchAPI, timeout),
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// loadPolicy reads auth.policyFile when set, the built-in policy otherwise.
func loadPolicy(conf *core.Config) (*access.Policy, error) {
	if conf.Auth.PolicyFile == "" {
		return access.DefaultPolicy(), nil
	}
	return access.LoadPolicyFile(conf.Auth.PolicyFile)
}
