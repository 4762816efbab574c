package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-sarpras-api/internal/config"
	"go-sarpras-api/internal/handler"
	"go-sarpras-api/internal/middleware"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"
	"go-sarpras-api/internal/scheduler"
	"go-sarpras-api/internal/service"
	"go-sarpras-api/internal/ws"
	"go-sarpras-api/pkg/clients/renderer"
	"go-sarpras-api/pkg/database"
	"go-sarpras-api/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	log := logger.Must(logger.New())
	defer log.Sync()

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.Material{},
		&model.StockTransaction{},
		&model.FixedAsset{},
		&model.AssetBorrow{},
		&model.Notification{},
		&model.PurchaseRequest{},
		&model.PurchaseRequestItem{},
		&model.User{},
		&model.Privilege{},
		&model.Role{},
	)

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db, log)

	// 4. External clients
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	rendererClient := renderer.New(cfg.Renderer.BaseURL, logger.Named(log, "renderer"))

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub(logger.Named(log, "ws"))
	go wsHub.Run()

	// 6. Dependency Injection (Wiring Layers)
	materialRepo := repository.NewMaterialRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	assetRepo := repository.NewAssetRepo(db)
	borrowRepo := repository.NewBorrowRepo(db)
	notifRepo := repository.NewNotificationRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	notifierService := service.NewNotifierService(notifRepo, materialRepo, borrowRepo, userRepo, rdb, wsHub, logger.Named(log, "notifier"))
	stockService := service.NewStockService(materialRepo, txRepo, db, wsHub, notifierService, logger.Named(log, "stock"))
	borrowService := service.NewBorrowService(assetRepo, borrowRepo, db, wsHub, logger.Named(log, "borrow"))
	purchaseService := service.NewPurchaseService(purchaseRepo, notifierService, logger.Named(log, "purchase"))
	reportService := service.NewReportService(materialRepo, borrowRepo, txRepo, rendererClient, logger.Named(log, "report"))
	authService := service.NewAuthService(userRepo, wsHub, logger.Named(log, "auth"))
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	stockHandler := handler.NewStockHandler(stockService)
	borrowHandler := handler.NewBorrowHandler(borrowService)
	notifHandler := handler.NewNotificationHandler(notifierService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 7. Scheduler for periodic trigger scans
	scanScheduler := scheduler.New(notifierService, cfg.Scan.Cron, logger.Named(log, "scheduler"))
	scanScheduler.Start()
	defer scanScheduler.Stop()

	// 8. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Sarpras API v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 9. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), reportHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege("dashboard:view"), reportHandler.GetStockMovement)

	// Materials
	protected.Get("/materials", middleware.RequirePrivilege("material:view"), stockHandler.GetMaterials)
	protected.Get("/materials/:id", middleware.RequirePrivilege("material:view"), stockHandler.GetMaterial)
	protected.Post("/materials", middleware.RequirePrivilege("material:create"), stockHandler.CreateMaterial)
	protected.Put("/materials/:id", middleware.RequirePrivilege("material:update"), stockHandler.UpdateMaterial)
	protected.Delete("/materials/:id", middleware.RequirePrivilege("material:delete"), stockHandler.DeleteMaterial)
	protected.Post("/materials/:id/adjust", middleware.RequirePrivilege("stock:adjust"), stockHandler.AdjustStock)

	// Stock ledger
	protected.Get("/stock/transactions", middleware.RequirePrivilege("stock:view"), stockHandler.GetTransactions)
	protected.Get("/stock/transactions/:id", middleware.RequirePrivilege("stock:view"), stockHandler.GetTransaction)
	protected.Post("/stock/movements", middleware.RequirePrivilege("stock:move"), stockHandler.CreateMovement)
	protected.Post("/stock/movements/batch", middleware.RequirePrivilege("stock:move"), stockHandler.CreateMovementBatch)

	// Fixed assets
	protected.Get("/assets", middleware.RequirePrivilege("asset:view"), borrowHandler.GetAssets)
	protected.Get("/assets/:id", middleware.RequirePrivilege("asset:view"), borrowHandler.GetAsset)
	protected.Post("/assets", middleware.RequirePrivilege("asset:create"), borrowHandler.CreateAsset)
	protected.Put("/assets/:id", middleware.RequirePrivilege("asset:update"), borrowHandler.UpdateAsset)
	protected.Delete("/assets/:id", middleware.RequirePrivilege("asset:delete"), borrowHandler.DeleteAsset)

	// Borrowing
	protected.Get("/borrows", middleware.RequirePrivilege("borrow:view"), borrowHandler.GetBorrows)
	protected.Get("/borrows/:id", middleware.RequirePrivilege("borrow:view"), borrowHandler.GetBorrow)
	protected.Post("/borrows", middleware.RequirePrivilege("borrow:create"), borrowHandler.CreateBorrow)
	protected.Post("/borrows/:id/return", middleware.RequirePrivilege("borrow:return"), borrowHandler.ReturnBorrow)
	protected.Post("/borrows/:id/undo-return", middleware.RequirePrivilege("borrow:return"), borrowHandler.UndoReturn)
	protected.Post("/borrows/:id/lost", middleware.RequirePrivilege("borrow:return"), borrowHandler.MarkLost)
	protected.Delete("/borrows/:id", middleware.RequirePrivilege("borrow:delete"), borrowHandler.DeleteBorrow)

	// Purchase requests
	protected.Get("/purchases", middleware.RequirePrivilege("purchase:view"), purchaseHandler.GetAll)
	protected.Get("/purchases/:id", middleware.RequirePrivilege("purchase:view"), purchaseHandler.Get)
	protected.Post("/purchases", middleware.RequirePrivilege("purchase:create"), purchaseHandler.Create)
	protected.Put("/purchases/:id/review", middleware.RequirePrivilege("purchase:review"), purchaseHandler.Review)
	protected.Delete("/purchases/:id", middleware.RequirePrivilege("purchase:create"), purchaseHandler.Delete)

	// Notifications (always scoped to the caller, no extra privilege)
	protected.Get("/notifications", notifHandler.GetMine)
	protected.Get("/notifications/unread-count", notifHandler.GetUnreadCount)
	protected.Put("/notifications/:id/read", notifHandler.MarkRead)
	protected.Put("/notifications/read-all", notifHandler.MarkAllRead)

	// Ad hoc trigger scans
	protected.Post("/scans/low-stock", middleware.RequirePrivilege("scan:run"), notifHandler.RunLowStockScan)
	protected.Post("/scans/overdue", middleware.RequirePrivilege("scan:run"), notifHandler.RunOverdueScan)

	// Reports
	protected.Get("/reports/stock", middleware.RequirePrivilege("report:view"), reportHandler.GetStockReport)
	protected.Get("/reports/stock/pdf", middleware.RequirePrivilege("report:export"), reportHandler.ExportStockPDF)
	protected.Get("/reports/borrows", middleware.RequirePrivilege("report:view"), reportHandler.GetBorrowReport)

	// User Management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles & privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 10. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB, log *zap.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Warn("failed to seed privileges", zap.Error(err))
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warn("failed to seed roles", zap.Error(err))
	}

	// 3. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets ALL privileges
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err == nil && len(masterRole.Privileges) == 0 {
		db.Model(&masterRole).Association("Privileges").Replace(allPrivileges)
		log.Info("MASTER_ADMIN role assigned all privileges")
	}

	// ADMIN gets everything except user management
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		adminPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if p.Code != "user:create" && p.Code != "user:update" && p.Code != "user:delete" && p.Code != "user:update_privilege" {
				adminPrivileges = append(adminPrivileges, p)
			}
		}
		db.Model(&adminRole).Association("Privileges").Replace(adminPrivileges)
		log.Info("ADMIN role assigned limited privileges")
	}

	// STAFF gets the day-to-day subset
	staffRole, err := roleRepo.FindByCode(model.RoleStaff)
	if err == nil && len(staffRole.Privileges) == 0 {
		allowed := make(map[string]bool, len(model.StaffPrivilegeCodes))
		for _, code := range model.StaffPrivilegeCodes {
			allowed[code] = true
		}
		staffPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if allowed[p.Code] {
				staffPrivileges = append(staffPrivileges, p)
			}
		}
		db.Model(&staffRole).Association("Privileges").Replace(staffPrivileges)
		log.Info("STAFF role assigned limited privileges")
	}

	// 4. Create default admin user with MASTER_ADMIN role
	_, err = userRepo.FindByEmail("admin@example.com")
	if err != nil {
		masterRole, _ := roleRepo.FindByCode(model.RoleMasterAdmin)

		admin := &model.User{
			Email:      "admin@example.com",
			FullName:   "Master Administrator",
			Department: "Sarana Prasarana",
			RoleID:     &masterRole.ID,
			IsActive:   true,
			Privileges: masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Warn("failed to hash admin password", zap.Error(err))
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Warn("failed to create admin user", zap.Error(err))
		} else {
			log.Info("admin user created", zap.String("email", "admin@example.com"))
		}
	}
}
