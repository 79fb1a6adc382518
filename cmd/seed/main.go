package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bloodbank-service/internal/adapter/middleware"
	"bloodbank-service/internal/adapter/repository/gormrepo"
	"bloodbank-service/internal/config"
	"bloodbank-service/internal/infrastructure/db"
	"bloodbank-service/internal/infrastructure/logging"
)

const tokenTTL = 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Dev: cfg.Dev(), ServiceName: cfg.ServiceName + "-seed"})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	gdb, err := db.OpenGorm(db.Options{Driver: cfg.DBDriver, DSN: cfg.DSN(), LogSQL: cfg.DBLogSQL})
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ctx := context.Background()
	out, err := seed(ctx, gormrepo.Repos(gdb), gormrepo.NewGormUoW(gdb), time.Now(), cfg.DefaultUnitLocation)
	if err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
	for i, line := range demoStock {
		logger.Info("added test blood",
			zap.String("blood_group", string(line.group)),
			zap.Int("quantity", line.quantity),
			zap.String("donor_id", out.DonorIDs[i]))
	}
	logger.Info("seed done", zap.Int("units", out.Units), zap.Int("timeslots", out.Slots), zap.String("patient_id", out.PatientID))

	secret := []byte(cfg.JWTSecret)
	printToken(secret, middleware.Principal{Kind: middleware.KindAdmin, ID: "seed-admin"})
	printToken(secret, middleware.Principal{Kind: middleware.KindPatient, ID: out.PatientID})
	for _, donorID := range out.DonorIDs {
		printToken(secret, middleware.Principal{Kind: middleware.KindDonor, ID: donorID})
	}
}

func printToken(secret []byte, p middleware.Principal) {
	tok, err := middleware.IssueToken(secret, p, tokenTTL)
	if err != nil {
		zap.L().Fatal("issue token", zap.Error(err))
	}
	fmt.Printf("%-8s %s %s\n", p.Kind, p.ID, tok)
}
