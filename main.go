package main

import (
	"github.com/rs/zerolog/log"

	"github.com/voicedeskai/voicedesk/agent/audit"
	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/confidence"
	"github.com/voicedeskai/voicedesk/agent/crm"
	"github.com/voicedeskai/voicedesk/agent/escalation"
	"github.com/voicedeskai/voicedesk/agent/faq"
	"github.com/voicedeskai/voicedesk/agent/retrieval"
	"github.com/voicedeskai/voicedesk/agent/tools"
	configx "github.com/voicedeskai/voicedesk/pkg/config"
	embedderx "github.com/voicedeskai/voicedesk/pkg/embedder"
	_ "github.com/voicedeskai/voicedesk/pkg/logger/autoload"
	qstashx "github.com/voicedeskai/voicedesk/pkg/qstash"
	"github.com/voicedeskai/voicedesk/server"
)

func main() {
	embedCfg := configx.MustNew[embedderx.Config]("OPENAI")
	embedClient := embedderx.MustNew(*embedCfg)

	weaviateCfg := configx.MustNew[retrieval.WeaviateConfig]("WEAVIATE")
	searcher, err := retrieval.NewWeaviateSearcher(*weaviateCfg, embedClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize weaviate searcher")
	}

	engine, err := retrieval.NewEngine(searcher, *configx.MustNew[retrieval.Config]("RETRIEVAL"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize retrieval engine")
	}

	policy := confidence.NewPolicy(*configx.MustNew[confidence.Config]("CONFIDENCE"))
	router := escalation.NewRouter(*configx.MustNew[escalation.Config]("ESCALATION"))

	directory, err := crm.NewPostgresDirectory(*configx.MustNew[crm.PostgresConfig]("CRM"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize crm directory")
	}
	defer directory.Close()

	faqService, err := faq.New(engine, policy, router, *configx.MustNew[faq.Config]("FAQ"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize faq service")
	}

	store := callctx.NewStore()

	var dispatcherOpts []tools.DispatcherOption
	if qstashCfg, err := configx.New[qstashx.Config]("QSTASH"); err == nil {
		notifier := escalation.NewQueueNotifier(
			qstashx.MustNew(*qstashCfg),
			*configx.MustNew[escalation.NotifierConfig]("ESCALATION"),
		)
		dispatcherOpts = append(dispatcherOpts, tools.WithNotifier(notifier))
	} else {
		log.Info().Msg("qstash not configured, escalation notifications disabled")
	}

	dispatcher, err := tools.NewDispatcher(store, faqService, router, directory, dispatcherOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize dispatcher")
	}

	var serverOpts []server.Option
	if auditCfg, err := configx.New[audit.UpstashRedisConfig]("AUDIT"); err == nil {
		archive, err := audit.NewUpstashRedisArchive(*auditCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize call archive")
		}
		serverOpts = append(serverOpts, server.WithArchiver(archive))
	} else {
		log.Info().Msg("audit archive not configured, call snapshots will not be retained")
	}

	srv, err := server.New(store, dispatcher, *configx.MustNew[server.Config]("SERVER"), serverOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("http server exited")
	}
}
