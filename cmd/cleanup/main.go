package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/config"
	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/repository"
)

var (
	dryRun      = flag.Bool("dry-run", true, "Dry run mode, don't actually delete rows")
	messageDays = flag.Int("message-days", 90, "Days to keep chat messages")
	usageDays   = flag.Int("usage-days", 30, "Days to keep usage records")
	sweepSubs   = flag.Bool("sweep-subscriptions", true, "Deactivate expired subscriptions")
)

func main() {
	flag.Parse()

	log.Println("🧹 Starting cleanup task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := connectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	messageRepo := repository.NewMessageRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	var deletedMessages, deletedUsage, sweptSubs int64

	// 1. 清理过期聊天消息
	messageCutoff := time.Now().AddDate(0, 0, -*messageDays)
	log.Printf("\n💬 Cleaning messages older than %d days (before %s)...", *messageDays, messageCutoff.Format("2006-01-02"))
	if *dryRun {
		deletedMessages = countRows(db, &model.Message{}, messageCutoff)
	} else {
		deletedMessages, err = messageRepo.DeleteBefore(messageCutoff)
		if err != nil {
			log.Printf("  ❌ Failed to delete messages: %v", err)
		}
	}
	log.Printf("Messages to delete: %d", deletedMessages)

	// 2. 清理过期用量记录
	usageCutoff := time.Now().AddDate(0, 0, -*usageDays)
	log.Printf("\n📊 Cleaning usage records older than %d days (before %s)...", *usageDays, usageCutoff.Format("2006-01-02"))
	if *dryRun {
		deletedUsage = countRows(db, &model.UsageStat{}, usageCutoff)
	} else {
		deletedUsage, err = usageRepo.DeleteBefore(usageCutoff)
		if err != nil {
			log.Printf("  ❌ Failed to delete usage records: %v", err)
		}
	}
	log.Printf("Usage records to delete: %d", deletedUsage)

	// 3. 下线到期订阅
	if *sweepSubs {
		log.Println("\n💎 Sweeping expired subscriptions...")
		if *dryRun {
			db.Model(&model.Subscription{}).
				Where("is_active = ? AND end_date <= ?", true, time.Now()).
				Count(&sweptSubs)
		} else {
			sweptSubs, err = subRepo.DeactivateExpired(time.Now())
			if err != nil {
				log.Printf("  ❌ Failed to sweep subscriptions: %v", err)
			}
		}
		log.Printf("Expired subscriptions: %d", sweptSubs)
	}

	// 输出统计
	log.Println("\n" + strings.Repeat("=", 60))
	log.Println("📊 Cleanup Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Messages deleted: %d", deletedMessages)
	log.Printf("Usage records deleted: %d", deletedUsage)
	log.Printf("Subscriptions deactivated: %d", sweptSubs)
	if *dryRun {
		log.Println("\n⚠️  DRY RUN MODE - No rows were actually deleted")
		log.Println("   Run with -dry-run=false to actually delete rows")
	} else {
		log.Println("\n✅ Cleanup completed!")
	}
	log.Println(strings.Repeat("=", 60))
}

// countRows 统计截止时间前的行数（dry-run 用）
func countRows(db *gorm.DB, m interface{}, cutoff time.Time) int64 {
	var count int64
	db.Model(m).Where("created_at < ?", cutoff).Count(&count)
	return count
}

// connectDB 连接数据库
func connectDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
