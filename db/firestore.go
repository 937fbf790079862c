package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taller/errs"
	"taller/models"
)

// Collection names.
const (
	colReports     = "reports"
	colComments    = "comments"
	colUsers       = "users"
	colPasswords   = "passwords"
	colAreas       = "areas"
	colMaintenance = "maintenance"
	colCounters    = "counters"
	colAuditLogs   = "audit_logs"
)

// folioCounterDoc is the single counter document the folio allocator
// increments transactionally.
const folioCounterDoc = "folio"

// writeAttempts bounds the retry loop on idempotent writes.
const writeAttempts = 3

// FirestoreDB wraps the Firestore client and the Firebase Auth admin
// client.
//
// Consistency model: field-level last-writer-wins. Every mutation is a
// firestore Update with an explicit field list, never a whole-document
// Set over an existing record, so concurrent writers on unrelated fields
// do not clobber each other. No optimistic concurrency tokens are used.
type FirestoreDB struct {
	client     *firestore.Client
	authClient *fbauth.Client
	folioBase  int
}

// NewFirestoreDB initializes the Firestore and Auth clients.
func NewFirestoreDB(ctx context.Context, projectID, credentialsPath string, folioBase int) (*FirestoreDB, error) {
	opt := option.WithCredentialsFile(credentialsPath)

	config := &firebase.Config{ProjectID: projectID}
	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Auth client: %w", err)
	}

	log.Printf("✅ Connected to Firestore project: %s", projectID)

	return &FirestoreDB{
		client:     client,
		authClient: authClient,
		folioBase:  folioBase,
	}, nil
}

// Close closes the Firestore client
func (db *FirestoreDB) Close() error {
	return db.client.Close()
}

// storeErr classifies a raw store failure into the shared error taxonomy.
func storeErr(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%s: %w: %v", op, errs.ErrTransient, err)
	case codes.Aborted:
		return fmt.Errorf("%s: %w: %v", op, errs.ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isRetryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	}
	return false
}

// retryWrite runs fn up to writeAttempts times with exponential backoff.
// Only for writes whose post-state is idempotent (field sets to absolute
// values), so a retry after an ambiguous outcome is safe.
func (db *FirestoreDB) retryWrite(ctx context.Context, op string, fn func() error) error {
	backoff := 200 * time.Millisecond
	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return storeErr(op, err)
		}
		if attempt < writeAttempts {
			log.Printf("⚠️  %s failed (attempt %d/%d), retrying: %v", op, attempt, writeAttempts, err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}
	return storeErr(op, err)
}

// --- Report Operations ---

// nextFolio decides the folio of the report being created. The counter
// document wins once it exists; before that the sequence seeds from the
// highest stored folio, or the configured base for an empty store.
func nextFolio(counterNext, maxFolio *int, base int) int {
	switch {
	case counterNext != nil:
		return *counterNext
	case maxFolio != nil:
		return *maxFolio + 1
	default:
		return base
	}
}

// CreateReport persists a new report, allocating its folio inside the
// same transaction. The counter document serializes concurrent creators,
// so folios are unique and never reused; on first use the counter seeds
// itself from the highest existing folio (or the configured base).
func (db *FirestoreDB) CreateReport(ctx context.Context, report *models.Report) error {
	counterRef := db.client.Collection(colCounters).Doc(folioCounterDoc)
	reportRef := db.client.Collection(colReports).Doc(report.ReportID)

	err := db.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var counterNext, maxFolio *int
		snap, err := tx.Get(counterRef)
		switch {
		case err == nil:
			var counter struct {
				Next int `firestore:"next"`
			}
			if err := snap.DataTo(&counter); err != nil {
				return fmt.Errorf("failed to parse folio counter: %w", err)
			}
			counterNext = &counter.Next
		case status.Code(err) == codes.NotFound:
			// First allocation: seed from the highest folio already stored.
			iter := tx.Documents(db.client.Collection(colReports).
				OrderBy("folio", firestore.Desc).
				Limit(1))
			defer iter.Stop()
			doc, err := iter.Next()
			if err == nil {
				var last models.Report
				if err := doc.DataTo(&last); err != nil {
					return fmt.Errorf("failed to parse last report: %w", err)
				}
				maxFolio = &last.Folio
			} else if err != iterator.Done {
				return fmt.Errorf("failed to read max folio: %w", err)
			}
		default:
			return fmt.Errorf("failed to read folio counter: %w", err)
		}

		next := nextFolio(counterNext, maxFolio, db.folioBase)
		report.Folio = next
		if err := tx.Set(counterRef, map[string]interface{}{"next": next + 1}); err != nil {
			return fmt.Errorf("failed to advance folio counter: %w", err)
		}
		return tx.Set(reportRef, report)
	})
	if err != nil {
		return storeErr("create report", err)
	}
	return nil
}

// GetReport retrieves a report by its document id.
func (db *FirestoreDB) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	doc, err := db.client.Collection(colReports).Doc(reportID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, &errs.NotFoundError{Kind: "report", Key: reportID}
	}
	if err != nil {
		return nil, storeErr("get report", err)
	}

	var report models.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// UpdateReport applies a partial field set to a report. Retried on
// transient failures; the field sets the lifecycle package produces are
// absolute values, so retries are safe.
func (db *FirestoreDB) UpdateReport(ctx context.Context, reportID string, updates []firestore.Update) error {
	ref := db.client.Collection(colReports).Doc(reportID)
	err := db.retryWrite(ctx, "update report", func() error {
		_, err := ref.Update(ctx, updates)
		return err
	})
	if status.Code(err) == codes.NotFound {
		return &errs.NotFoundError{Kind: "report", Key: reportID}
	}
	return err
}

// GetAllReports retrieves the full report snapshot (metrics, admin list).
func (db *FirestoreDB) GetAllReports(ctx context.Context) ([]models.Report, error) {
	return db.reportQuery(ctx, db.client.Collection(colReports).Query)
}

// GetReportsByReporter retrieves the reports filed by one user.
func (db *FirestoreDB) GetReportsByReporter(ctx context.Context, email string) ([]models.Report, error) {
	return db.reportQuery(ctx, db.client.Collection(colReports).
		Where("reporterEmail", "==", email))
}

// GetUnassignedNotifications retrieves reports lighting the admin badge.
func (db *FirestoreDB) GetUnassignedNotifications(ctx context.Context) ([]models.Report, error) {
	return db.reportQuery(ctx, db.client.Collection(colReports).
		Where("notification", "==", true))
}

// GetTechnicianNotifications retrieves reports lighting a technician's badge.
func (db *FirestoreDB) GetTechnicianNotifications(ctx context.Context, email string) ([]models.Report, error) {
	return db.reportQuery(ctx, db.client.Collection(colReports).
		Where("technicianEmail", "==", email).
		Where("notificationTech", "==", true))
}

// GetReporterNotifications retrieves a reporter's completed-and-unseen reports.
func (db *FirestoreDB) GetReporterNotifications(ctx context.Context, email string) ([]models.Report, error) {
	return db.reportQuery(ctx, db.client.Collection(colReports).
		Where("reporterEmail", "==", email).
		Where("notificationStatus", "==", true))
}

// GetReportsByTechnician retrieves every report assigned to a technician.
func (db *FirestoreDB) GetReportsByTechnician(ctx context.Context, email string) ([]models.Report, error) {
	return db.reportQuery(ctx, db.client.Collection(colReports).
		Where("technicianEmail", "==", email))
}

func (db *FirestoreDB) reportQuery(ctx context.Context, q firestore.Query) ([]models.Report, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var rs []models.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeErr("iterate reports", err)
		}

		var r models.Report
		if err := doc.DataTo(&r); err != nil {
			log.Printf("Warning: failed to parse report %s: %v", doc.Ref.ID, err)
			continue
		}
		rs = append(rs, r)
	}
	return rs, nil
}

// DeleteReport deletes a report and its comment thread. It returns the
// storage URLs of the report image and every comment image so the caller
// can delete the blobs; deleting documents never reaches into storage
// from here.
func (db *FirestoreDB) DeleteReport(ctx context.Context, reportID string) ([]string, error) {
	report, err := db.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	var blobs []string
	if report.Imagen != "" {
		blobs = append(blobs, report.Imagen)
	}

	thread, err := db.GetCommentsByReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	for _, c := range thread {
		if c.Image != "" {
			blobs = append(blobs, c.Image)
		}
		if _, err := db.client.Collection(colComments).Doc(c.CommentID).Delete(ctx); err != nil {
			return nil, storeErr("delete comment", err)
		}
	}

	if _, err := db.client.Collection(colReports).Doc(reportID).Delete(ctx); err != nil {
		return nil, storeErr("delete report", err)
	}
	return blobs, nil
}

// --- Comment Operations ---

// CreateComment persists a comment record. The server timestamp on
// created_at is the ordering key for the thread.
func (db *FirestoreDB) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := db.retryWrite(ctx, "create comment", func() error {
		_, err := db.client.Collection(colComments).Doc(comment.CommentID).Set(ctx, comment)
		return err
	})
	return err
}

// AttachCommentImage patches the stored image URL onto an existing
// comment. The record is written before the blob is uploaded, so an
// upload failure leaves a comment without an image instead of an
// orphaned blob.
func (db *FirestoreDB) AttachCommentImage(ctx context.Context, commentID, imageURL string) error {
	ref := db.client.Collection(colComments).Doc(commentID)
	return db.retryWrite(ctx, "attach comment image", func() error {
		_, err := ref.Update(ctx, []firestore.Update{{Path: "image", Value: imageURL}})
		return err
	})
}

// GetComment retrieves a single comment by id.
func (db *FirestoreDB) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	doc, err := db.client.Collection(colComments).Doc(commentID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, &errs.NotFoundError{Kind: "comment", Key: commentID}
	}
	if err != nil {
		return nil, storeErr("get comment", err)
	}

	var c models.Comment
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("failed to parse comment: %w", err)
	}
	return &c, nil
}

// GetCommentsByReport retrieves a report's thread ordered by the server
// timestamp, ascending.
func (db *FirestoreDB) GetCommentsByReport(ctx context.Context, reportID string) ([]models.Comment, error) {
	iter := db.client.Collection(colComments).
		Where("report_id", "==", reportID).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var thread []models.Comment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeErr("iterate comments", err)
		}

		var c models.Comment
		if err := doc.DataTo(&c); err != nil {
			log.Printf("Warning: failed to parse comment %s: %v", doc.Ref.ID, err)
			continue
		}
		thread = append(thread, c)
	}
	return thread, nil
}

// DeleteComment deletes a comment record and returns its image URL (empty
// if none) so the caller can delete the blob. Never touches the parent
// report.
func (db *FirestoreDB) DeleteComment(ctx context.Context, commentID string) (string, error) {
	comment, err := db.GetComment(ctx, commentID)
	if err != nil {
		return "", err
	}
	if _, err := db.client.Collection(colComments).Doc(commentID).Delete(ctx); err != nil {
		return "", storeErr("delete comment", err)
	}
	return comment.Image, nil
}

// --- User Operations ---

// CreateUser creates a new user profile.
func (db *FirestoreDB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := db.client.Collection(colUsers).Doc(user.UserID).Set(ctx, user)
	if err != nil {
		return storeErr("create user", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (db *FirestoreDB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	doc, err := db.client.Collection(colUsers).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, &errs.NotFoundError{Kind: "user", Key: userID}
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (db *FirestoreDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	iter := db.client.Collection(colUsers).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, &errs.NotFoundError{Kind: "user", Key: email}
	}
	if err != nil {
		return nil, storeErr("get user by email", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

// GetAllUsers retrieves all user profiles.
func (db *FirestoreDB) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return db.userQuery(ctx, db.client.Collection(colUsers).Query)
}

// GetTechnicians retrieves the assignment roster.
func (db *FirestoreDB) GetTechnicians(ctx context.Context) ([]models.User, error) {
	return db.userQuery(ctx, db.client.Collection(colUsers).
		Where("userType", "==", string(models.RoleTecnico)))
}

func (db *FirestoreDB) userQuery(ctx context.Context, q firestore.Query) ([]models.User, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var users []models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeErr("iterate users", err)
		}

		var user models.User
		if err := doc.DataTo(&user); err != nil {
			log.Printf("Warning: failed to parse user %s: %v", doc.Ref.ID, err)
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// UpdateUser applies a partial field set to a user profile.
func (db *FirestoreDB) UpdateUser(ctx context.Context, userID string, updates []firestore.Update) error {
	_, err := db.client.Collection(colUsers).Doc(userID).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return &errs.NotFoundError{Kind: "user", Key: userID}
	}
	if err != nil {
		return storeErr("update user", err)
	}
	return nil
}

// DeleteUser deletes a user profile and its credential document.
func (db *FirestoreDB) DeleteUser(ctx context.Context, userID string) error {
	if _, err := db.client.Collection(colPasswords).Doc(userID).Delete(ctx); err != nil {
		return storeErr("delete password", err)
	}
	if _, err := db.client.Collection(colUsers).Doc(userID).Delete(ctx); err != nil {
		return storeErr("delete user", err)
	}
	return nil
}

// DeleteAuthUserByEmail deletes the Firebase Auth identity behind an
// email. NotFoundError when the email does not resolve to an identity.
func (db *FirestoreDB) DeleteAuthUserByEmail(ctx context.Context, email string) error {
	record, err := db.authClient.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return &errs.NotFoundError{Kind: "auth user", Key: email}
		}
		return storeErr("resolve auth user", err)
	}
	if err := db.authClient.DeleteUser(ctx, record.UID); err != nil {
		return storeErr("delete auth user", err)
	}
	return nil
}

// --- Password Operations ---

// StorePasswordHash stores a password hash for a user
func (db *FirestoreDB) StorePasswordHash(ctx context.Context, userID, passwordHash string) error {
	_, err := db.client.Collection(colPasswords).Doc(userID).Set(ctx, map[string]interface{}{
		"user_id":       userID,
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})
	if err != nil {
		return storeErr("store password hash", err)
	}
	return nil
}

// GetPasswordHash retrieves a password hash for a user
func (db *FirestoreDB) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	doc, err := db.client.Collection(colPasswords).Doc(userID).Get(ctx)
	if err != nil {
		return "", storeErr("get password hash", err)
	}

	data := doc.Data()
	if hash, ok := data["password_hash"].(string); ok {
		return hash, nil
	}
	return "", fmt.Errorf("password hash not found for user: %s", userID)
}

// --- Area Operations ---

// CreateArea adds an area to the picklist catalog.
func (db *FirestoreDB) CreateArea(ctx context.Context, area *models.Area) error {
	_, err := db.client.Collection(colAreas).Doc(area.AreaID).Set(ctx, area)
	if err != nil {
		return storeErr("create area", err)
	}
	return nil
}

// GetAllAreas retrieves the area catalog ordered by name.
func (db *FirestoreDB) GetAllAreas(ctx context.Context) ([]models.Area, error) {
	iter := db.client.Collection(colAreas).
		OrderBy("area", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var areas []models.Area
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeErr("iterate areas", err)
		}

		var a models.Area
		if err := doc.DataTo(&a); err != nil {
			log.Printf("Warning: failed to parse area %s: %v", doc.Ref.ID, err)
			continue
		}
		areas = append(areas, a)
	}
	return areas, nil
}

// DeleteArea removes an area from the catalog.
func (db *FirestoreDB) DeleteArea(ctx context.Context, areaID string) error {
	if _, err := db.client.Collection(colAreas).Doc(areaID).Delete(ctx); err != nil {
		return storeErr("delete area", err)
	}
	return nil
}

// --- Maintenance Operations ---

// CreateMaintenance persists a recurring-service schedule.
func (db *FirestoreDB) CreateMaintenance(ctx context.Context, schedule *models.MaintenanceSchedule) error {
	_, err := db.client.Collection(colMaintenance).Doc(schedule.ScheduleID).Set(ctx, schedule)
	if err != nil {
		return storeErr("create maintenance", err)
	}
	return nil
}

// GetMaintenanceByTechnician retrieves a technician's schedules.
func (db *FirestoreDB) GetMaintenanceByTechnician(ctx context.Context, email string) ([]models.MaintenanceSchedule, error) {
	iter := db.client.Collection(colMaintenance).
		Where("technicianEmail", "==", email).
		Documents(ctx)
	defer iter.Stop()

	var schedules []models.MaintenanceSchedule
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeErr("iterate maintenance", err)
		}

		var s models.MaintenanceSchedule
		if err := doc.DataTo(&s); err != nil {
			log.Printf("Warning: failed to parse maintenance %s: %v", doc.Ref.ID, err)
			continue
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

// DeleteMaintenance removes a schedule.
func (db *FirestoreDB) DeleteMaintenance(ctx context.Context, scheduleID string) error {
	if _, err := db.client.Collection(colMaintenance).Doc(scheduleID).Delete(ctx); err != nil {
		return storeErr("delete maintenance", err)
	}
	return nil
}

// --- Audit Log ---

// CreateAuditLog appends one lifecycle-mutation record. Failures are
// logged, not surfaced: auditing never blocks the mutation it records.
func (db *FirestoreDB) CreateAuditLog(ctx context.Context, entry *models.AuditLog) {
	if _, err := db.client.Collection(colAuditLogs).Doc(entry.LogID).Set(ctx, entry); err != nil {
		log.Printf("Warning: failed to write audit log %s: %v", entry.Action, err)
	}
}
