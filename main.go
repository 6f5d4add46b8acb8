package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"PHistory/global"
	"PHistory/logger"
	"PHistory/module/chat/history"
	"PHistory/service/storage"
	syncsvc "PHistory/service/sync"
	"PHistory/tools/safe"
)

func main() {
	cfgPath := flag.String("config", "", "JSON 配置文件，缺省用内置默认值")
	flag.Parse()

	cfg := global.Default()
	if *cfgPath != "" {
		raw, err := os.ReadFile(*cfgPath)
		if err != nil {
			logger.Errorf("read config: %v", err)
			os.Exit(1)
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			logger.Errorf("parse config: %v", err)
			os.Exit(1)
		}
		if cfg, err = global.DecodeConfig(m); err != nil {
			logger.Errorf("decode config: %v", err)
			os.Exit(1)
		}
	}
	logger.SetLevel(cfg.LogLevel)
	defer logger.Sync()

	if err := storage.InitRedis(cfg.Redis); err != nil {
		logger.Errorf("init redis: %v", err)
		os.Exit(1)
	}
	mcli, err := storage.InitMongo(cfg.Mongo)
	if err != nil {
		logger.Errorf("init mongo: %v", err)
		os.Exit(1)
	}
	persist := storage.NewPersist(storage.GetRedis())
	pages := storage.NewPageStore(mcli, cfg.Mongo)

	client, err := syncsvc.NewClient(cfg.Nats)
	if err != nil {
		logger.Errorf("init nats: %v", err)
		os.Exit(1)
	}
	producer := syncsvc.NewProducer(client, cfg.BlockSize)
	mgr := history.NewManager(history.NewRegistry(), producer, nil, cfg)
	mgr.SetPersister(storage.NewWindowPersister(persist))
	consumer := syncsvc.NewConsumer(client, mgr, pages)
	producer.Bind(pages, persist, consumer.Enqueue, mgr.IngestRange)

	ctx, cancel := context.WithCancel(context.Background())
	safe.SafeGo(func() {
		if err := consumer.Run(ctx); err != nil {
			logger.Errorf("consumer: %v", err)
		}
	})
	logger.Infof("phistory node %s up", cfg.NodeId)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	_ = client.Close()
	mgr.Teardown()
	logger.Info("phistory down")
}
