package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"kospi-treasure/internal/application/treasure"
	"kospi-treasure/internal/infrastructure/config"
	"kospi-treasure/internal/infrastructure/fixture"
	"kospi-treasure/internal/infrastructure/persistence/postgres"

	_ "github.com/lib/pq"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("dir", "db/migrations", "path to migrations directory")
	seed := flag.Bool("seed", false, "load fixture JSON into the database after migrating")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		log.Fatalf("讀取組態失敗: %v", err)
	}

	if cfg.DB.DSN == "" {
		log.Fatal("config.db.dsn 未設定，無法執行 migration")
	}

	absDir, err := filepath.Abs(*migrationsPath)
	if err != nil {
		log.Fatalf("解析 migrations 路徑失敗: %v", err)
	}
	if _, err := os.Stat(absDir); err != nil {
		log.Fatalf("migrations 目錄不存在: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(absDir, "*.sql"))
	if err != nil {
		log.Fatalf("讀取 migrations 失敗: %v", err)
	}
	if len(files) == 0 {
		log.Fatal("找不到任何 .sql migration 檔案")
	}
	sort.Strings(files)

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		log.Fatalf("連線資料庫失敗: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		log.Fatalf("建立 schema_migrations 失敗: %v", err)
	}

	for _, f := range files {
		name := filepath.Base(f)
		var applied bool
		if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied); err != nil {
			log.Fatalf("查詢 migration 狀態失敗: %v", err)
		}
		if applied {
			log.Printf("略過已執行的 migration: %s", name)
			continue
		}

		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("讀取檔案 %s 失敗: %v", f, err)
		}
		log.Printf("執行 migration: %s", name)
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			log.Fatalf("執行 %s 失敗: %v", name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			log.Fatalf("記錄 %s 失敗: %v", name, err)
		}
	}
	fmt.Println("Migration 完成")

	if *seed {
		if err := seedFixtures(cfg, db); err != nil {
			log.Fatalf("匯入資料檔失敗: %v", err)
		}
		fmt.Println("資料匯入完成")
	}
	os.Exit(0)
}

// seedFixtures 將 JSON 資料檔整批寫入資料庫，並建立預設帳號。
func seedFixtures(cfg config.Config, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	engine := treasure.NewEngine(
		treasure.WithYears(cfg.Treasure.Years),
		treasure.WithZeroAsMissing(cfg.Treasure.ZeroMissing()),
	)
	loader := fixture.NewLoader(cfg.Fixtures.Companies, cfg.Fixtures.Industries, engine)
	res, err := loader.LoadInto(ctx, postgres.NewRepo(db))
	if err != nil {
		return err
	}
	log.Printf("匯入公司 %d 筆、產業 %d 筆（略過 %d 筆）", len(res.Companies), len(res.Industries), res.Skipped)

	return postgres.NewAuthRepo(db).SeedDefaults(ctx, cfg.Auth.SeedPassword)
}
