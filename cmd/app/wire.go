//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/yt-summarizer/internal/bootstrap"
	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
	"github.com/yanqian/yt-summarizer/internal/infra/config"
	"github.com/yanqian/yt-summarizer/internal/infra/render"
	"github.com/yanqian/yt-summarizer/internal/infra/tokenizer"
	httpiface "github.com/yanqian/yt-summarizer/internal/interface/http"
	"github.com/yanqian/yt-summarizer/pkg/logger"
	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		bootstrap.ProvideSummaryConfig,
		bootstrap.ProvideTemplateStore,
		bootstrap.ProvideGenerators,
		bootstrap.ProvideTranscriptProvider,
		bootstrap.ProvideTemplateWatcher,
		bootstrap.ProvideTokenCounter,
		metrics.NewPrometheusRecorder,
		render.NewMarkdown,
		summarizer.NewService,
		wire.Bind(new(summarizer.TokenCounter), new(*tokenizer.Tiktoken)),
		wire.Bind(new(metrics.Recorder), new(*metrics.PrometheusRecorder)),
		httpiface.NewSummaryHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
