package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tidewater-games/actioncard-bot/internal/chat"
	"github.com/tidewater-games/actioncard-bot/internal/config"
	"github.com/tidewater-games/actioncard-bot/internal/handlers/discord"
	"github.com/tidewater-games/actioncard-bot/internal/repositories/actioncards"
	"github.com/tidewater-games/actioncard-bot/internal/repositories/gameactors"
	"github.com/tidewater-games/actioncard-bot/internal/services"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Application ID: %s", cfg.Discord.AppID)
	if cfg.Discord.GuildID != "" {
		log.Printf("Guild ID: %s", cfg.Discord.GuildID)
	}

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	worldProvider := world.NewInMemoryProvider()
	bus := chat.NewBus()

	providerConfig := &services.ProviderConfig{
		WorldProvider:  worldProvider,
		Bus:            bus,
		ActionDelay:    cfg.Actions.Delay,
		CaptureTimeout: cfg.Actions.CaptureTimeout,
	}

	// Keep Redis client for cleanup
	var redisClient *redis.Client

	// Try to connect to Redis if an address is configured
	if cfg.Redis.Addr != "" {
		log.Printf("Connecting to Redis at: %s", cfg.Redis.Addr)

		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		// Test connection
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
			cancel()
			log.Printf("Failed to connect to Redis: %v", pingErr)
			log.Println("Falling back to in-memory repositories")
			redisClient = nil
		} else {
			cancel()
			log.Println("Successfully connected to Redis")

			providerConfig.CardRepository = actioncards.NewRedisRepository(&actioncards.RedisRepoConfig{
				Client: redisClient,
			})
			providerConfig.ActorRepo = gameactors.NewRedisRepository(redisClient)

			log.Println("Using Redis for persistence")
		}
	}

	// Create service provider
	serviceProvider := services.NewProvider(providerConfig)

	// Relay chat-pipeline messages to Discord when a channel is configured
	if channelID := os.Getenv("CHAT_CHANNEL_ID"); channelID != "" {
		bus.Subscribe(func(msg *chat.Message) {
			if msg.Content == "" {
				return
			}
			if _, sendErr := dg.ChannelMessageSend(channelID, msg.Content); sendErr != nil {
				log.Printf("Failed to relay chat message: %v", sendErr)
			}
		})
	}

	// Create Discord handler
	handler := discord.NewHandler(&discord.HandlerConfig{
		ServiceProvider: serviceProvider,
		WorldProvider:   worldProvider,
	})

	// Register interaction handler
	dg.AddHandler(handler.HandleInteraction)

	// Open connection to Discord
	err = dg.Open()
	if err != nil {
		log.Printf("Failed to open Discord connection: %v", err)
		return
	}
	defer func() {
		clientErr := dg.Close()
		if clientErr != nil {
			log.Printf("Failed to close Discord connection: %v", clientErr)
		}
	}()

	// Register commands
	if err := handler.RegisterCommands(dg, cfg.Discord.GuildID); err != nil {
		log.Printf("Failed to register commands: %v", err)
		return
	}

	if cfg.Discord.GuildID != "" {
		log.Printf("Registered commands for guild: %s", cfg.Discord.GuildID)
	} else {
		log.Println("Registered global commands (may take up to 1 hour to propagate)")
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	fmt.Println("Shutting down...")

	// Clean up Redis connection if we have one
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		} else {
			log.Println("Closed Redis connection")
		}
	}
}
