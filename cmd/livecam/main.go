// Command livecam runs the detection pipeline against a camera or stream and
// forwards matched detections to the vision event store. It is the headless
// counterpart of the dashboard's live view: check-in happens through the API,
// this process watches one camera angle for one round.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"birdieo-service/internal/config"
	"birdieo-service/internal/db"
	"birdieo-service/internal/repository"
	"birdieo-service/internal/service"
	"birdieo-service/internal/vision"
	"birdieo-service/internal/vision/gocvdetect"
)

func main() {
	roundID := flag.String("round", "", "round to watch (required)")
	holeNumber := flag.Int("hole", 1, "hole number the camera covers")
	source := flag.String("source", "", "capture source, overrides camera.source from config")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if *roundID == "" {
		log.Fatal().Msg("-round is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	captureSource := cfg.Camera.Source
	if *source != "" {
		captureSource = *source
	}

	database, err := db.Open(cfg.DB.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	userRepo := repository.NewUserRepository(database)
	roundRepo := repository.NewRoundRepository(database)
	visionRepo := repository.NewVisionRepository(database)
	visionService := service.NewVisionService(visionRepo, roundRepo, userRepo, log)

	ctx := context.Background()
	roster, err := buildRoster(ctx, roundRepo, userRepo, *roundID)
	if err != nil {
		log.Fatal().Err(err).Str("round_id", *roundID).Msg("failed to build roster")
	}
	if len(roster) == 0 {
		log.Warn().Str("round_id", *roundID).Msg("round has no subject profiles, nothing will match")
	}

	net, err := gocvdetect.Load(cfg.Vision.ModelPath, cfg.Vision.ConfigPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load detection model")
	}
	defer net.Close()

	capture, err := gocvdetect.OpenCapture(captureSource)
	if err != nil {
		log.Fatal().Err(err).Str("source", captureSource).Msg("failed to open capture source")
	}

	session := vision.NewSession(net.Detector(), visionService, vision.Options{
		TargetColors:  cfg.Vision.TargetColors,
		ShowOverlay:   cfg.Vision.ShowOverlay,
		FPS:           cfg.Vision.FPS,
		DetectTimeout: cfg.Vision.DetectTimeout,
		RoundID:       *roundID,
		HoleNumber:    *holeNumber,
		CameraAngle:   cfg.Camera.Angle,
	}, log)

	if err := session.Start(ctx, capture, roster); err != nil {
		log.Fatal().Err(err).Msg("failed to start detection session")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	session.Stop()
}

func buildRoster(ctx context.Context, rounds *repository.RoundRepository, users *repository.UserRepository, roundID string) ([]vision.ExpectedPlayer, error) {
	profiles, err := rounds.FindProfilesByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	roster := make([]vision.ExpectedPlayer, 0, len(profiles))
	for _, p := range profiles {
		player := vision.ExpectedPlayer{
			PlayerID: p.ID,
			Clothing: vision.ClothingDescriptor{
				TopColor:    p.TopColor,
				BottomColor: p.BottomColor,
			},
		}
		if p.UserID != nil {
			if u, err := users.GetUserByID(ctx, *p.UserID); err == nil {
				player.DisplayName = u.Name
			}
		}
		roster = append(roster, player)
	}
	return roster, nil
}
