// @title           Purchasing API
// @version         1.0
// @description     Purchasing Backend API - vendor comparison, approval workflow and PO creation.

// @contact.name   API Support

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	_ "backend/docs"
	"backend/handlers"
	"backend/services"
	"backend/storage"
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:9000",
	}
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

var cronRunning int32

func safeGo(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	fn func(context.Context) error,
	cronLogger *log.Logger,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				if cronLogger != nil {
					cronLogger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				}
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("%s failed: %v", name, err)
			if cronLogger != nil {
				cronLogger.Printf("%s failed: %v", name, err)
			}
		} else {
			log.Printf("%s completed successfully", name)
			if cronLogger != nil {
				cronLogger.Printf("%s completed successfully", name)
			}
		}
	}()
}

// runPendingApprovalReminders re-notifies the approver group about
// comparisons sitting in Pending Approval for more than two days.
func runPendingApprovalReminders(db *sql.DB, emailService *services.EmailService, fcmService *services.FCMService) error {
	rows, err := db.Query(`
		SELECT pcl_id, COALESCE(pcl_no, ''), part_no
		FROM pcl
		WHERE status = 'Pending Approval'
		  AND updated_at < NOW() - INTERVAL '2 days'`)
	if err != nil {
		return fmt.Errorf("failed to fetch stale pending comparisons: %w", err)
	}
	defer rows.Close()

	type pending struct {
		id     int
		pclNo  string
		partNo string
	}
	var stale []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.pclNo, &p.partNo); err != nil {
			return err
		}
		stale = append(stale, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	var approvers []string
	if emailService != nil {
		approvers, err = emailService.ApproverEmails()
		if err != nil {
			log.Printf("Reminder: failed to list approver emails: %v", err)
		}
	}

	for _, p := range stale {
		for _, to := range approvers {
			if err := emailService.SendApprovalRequestEmail(to, p.pclNo, p.partNo, "system reminder", "", "pending for more than 2 days"); err != nil {
				log.Printf("Reminder email to %s failed for %s: %v", to, p.pclNo, err)
			}
		}
		if fcmService != nil {
			if err := fcmService.NotifyApprovers(context.Background(), p.pclNo, p.partNo); err != nil {
				log.Printf("Reminder push failed for %s: %v", p.pclNo, err)
			}
		}
	}
	log.Printf("Sent reminders for %d pending comparisons", len(stale))
	return nil
}

// archivePurchaseHistory snapshots ordered comparison lines into
// purchase_history so future comparisons of the same product see them as
// recent purchases.
func archivePurchaseHistory(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for history archive: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO purchase_history (pr_list_id, product_code, vendor_code, price, price_approval, discount, purchase_date, due_date)
		SELECT pi.pr_list_id, pi.product_code, c.vendor_code, c.price, c.price, c.discount, po.created_at, c.date_due
		FROM po
		JOIN po_pcl pp ON pp.po_id = po.po_id
		JOIN pcl p ON p.pcl_id = pp.pcl_id
		JOIN clv c ON c.clv_id = p.vendor_selected
		JOIN pr_item pi ON pi.pcl_id = p.pcl_id
		WHERE NOT EXISTS (
			SELECT 1 FROM purchase_history h WHERE h.pr_list_id = pi.pr_list_id
		)`)
	if err != nil {
		return fmt.Errorf("failed to archive purchase history: %w", err)
	}
	archived, _ := res.RowsAffected()
	if archived > 0 {
		log.Printf("Archived %d purchase history rows", archived)
	}

	return tx.Commit()
}

func main() {
	db := storage.InitDB()
	gdb := storage.InitGormDB()

	emailService := services.NewEmailService(db)
	handlers.SetEmailService(emailService)

	credentialsPath := os.Getenv("FCM_CREDENTIALS_PATH")
	if credentialsPath == "" {
		credentialsPath = "firebase-credentials.json"
	}
	fcmService, err := services.NewFCMService(credentialsPath, db)
	if err != nil {
		log.Printf("Warning: Failed to initialize FCM service: %v. Push notifications will be disabled.", err)
		fcmService = nil
	} else {
		log.Println("FCM service initialized successfully")
	}
	handlers.SetFCMService(fcmService)

	// Daily maintenance at 00:30
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)

	_, err = c.AddFunc("30 0 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			if cronLogger != nil {
				cronLogger.Println("Previous cron still running. Skipping this run.")
			}
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance cron job")

		ctx, cancel := context.WithTimeout(context.Background(), 25*time.Minute)
		defer cancel()

		var wg sync.WaitGroup

		safeGo(ctx, &wg, "CleanupExpiredSessions", func(ctx context.Context) error {
			return storage.CleanupExpiredSessions(db)
		}, cronLogger)

		safeGo(ctx, &wg, "PurgeOldActivityLogs", func(ctx context.Context) error {
			return handlers.PurgeOldActivityLogs(gdb, 90*24*time.Hour)
		}, cronLogger)

		safeGo(ctx, &wg, "PendingApprovalReminders", func(ctx context.Context) error {
			return runPendingApprovalReminders(db, emailService, fcmService)
		}, cronLogger)

		safeGo(ctx, &wg, "ArchivePurchaseHistory", func(ctx context.Context) error {
			return archivePurchaseHistory(db)
		}, cronLogger)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("All cron jobs finished")
		case <-ctx.Done():
			log.Println("Cron timeout reached, jobs cancelled")
			if cronLogger != nil {
				cronLogger.Println("Cron timeout reached, jobs cancelled")
			}
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}

	c.Start()

	r := gin.Default()

	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & LOGIN ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))

	// ==================== 2. NOTIFICATIONS ====================
	r.POST("/api/fcm/register", handlers.RegisterFCMToken(db))
	r.DELETE("/api/fcm/unregister", handlers.UnregisterFCMToken(db))

	// ==================== 3. VENDORS ====================
	r.GET("/api/purchase/search-vendor", handlers.SearchVendor(db))
	r.GET("/api/purchase/vendors", handlers.GetVendorByCode(db))
	r.POST("/api/purchase/create-new-vendor", handlers.CreateNewVendor(db))
	r.PUT("/api/purchase/update-vendor", handlers.UpdateVendor(db))

	// ==================== 4. COMPARISON ====================
	r.GET("/api/purchase/pc/compare/list", handlers.GetCompareList(db))
	r.GET("/api/purchase/pc/approved-list", handlers.GetApprovedList(db))
	r.POST("/api/purchase/insert-vendor-for-compare", handlers.InsertVendorForCompare(db))
	r.DELETE("/api/purchase/remove-vendor-from-clv", handlers.RemoveVendorFromCLV(db))
	r.PUT("/api/purchase/edit-price-in-clv", handlers.EditPriceInCLV(db))
	r.PUT("/api/purchase/send-pcl-to-approve", handlers.SendPCLToApprove(db))
	r.PUT("/api/purchase/approve-pcl", handlers.ApprovePCL(db))
	r.PUT("/api/purchase/reject-pcl", handlers.RejectPCL(db))

	// ==================== 5. PURCHASE ORDERS ====================
	r.POST("/api/purchase/po/create", handlers.CreatePO(db))
	r.GET("/api/purchase/po/detail/:po_id", handlers.GetPOByID(db))
	r.GET("/api/purchase/po/pdf/:po_id", handlers.GeneratePOPdf(db))
	r.GET("/api/purchase/po/qrcode/:po_id", handlers.GeneratePOQRCode(db))

	// ==================== 6. EXPORT ====================
	r.GET("/api/purchase/pc/export/:pcl_id", handlers.ExportComparisonXLSX(db))

	// ==================== 7. ACTIVITY LOGS ====================
	r.GET("/api/activity_logs", handlers.GetActivityLogsHandler(db, gdb))

	// ==================== 8. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(10 * time.Second):
		log.Println("Cron jobs did not finish in time")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
