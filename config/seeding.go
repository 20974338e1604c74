package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"nlas.ph/portal/models"
)

// RunAllSeeding runs all seeding operations in the correct order
func RunAllSeeding() error {
	log.Println("=== Starting Database Seeding ===")

	log.Println("\n[1/4] Seeding Permissions and Roles...")
	SeedPermissions()

	log.Println("\n[2/4] Seeding Services...")
	SeedServices()

	log.Println("\n[3/4] Seeding Document Requirements...")
	SeedDocumentRequirements()

	log.Println("\n[4/4] Seeding Default Users...")
	SeedUsers()

	log.Println("\n=== Database Seeding Complete ===")
	return nil
}

// =====================================================
// Permissions & Roles Seeding
// =====================================================

// SeedPermissions creates default permissions and roles
func SeedPermissions() {
	permissions := []models.Permission{
		// Super Admin Wildcard
		{ID: uuid.New(), Name: "*:*", Resource: "*", Action: "*", Description: "Super Admin wildcard - all permissions"},

		// Clients
		{ID: uuid.New(), Name: "client:create", Resource: "client", Action: "create", Description: "Create client account"},
		{ID: uuid.New(), Name: "client:read", Resource: "client", Action: "read", Description: "View client details"},
		{ID: uuid.New(), Name: "client:update", Resource: "client", Action: "update", Description: "Edit client account"},
		{ID: uuid.New(), Name: "client:delete", Resource: "client", Action: "delete", Description: "Delete client account"},

		// Payments
		{ID: uuid.New(), Name: "payment:create", Resource: "payment", Action: "create", Description: "Create payment record"},
		{ID: uuid.New(), Name: "payment:read", Resource: "payment", Action: "read", Description: "View payments"},
		{ID: uuid.New(), Name: "payment:update", Resource: "payment", Action: "update", Description: "Edit payment record"},
		{ID: uuid.New(), Name: "payment:delete", Resource: "payment", Action: "delete", Description: "Delete payment record"},
		{ID: uuid.New(), Name: "payment:approve", Resource: "payment", Action: "approve", Description: "Approve or reject submitted payments"},

		// Quotations
		{ID: uuid.New(), Name: "quotation:create", Resource: "quotation", Action: "create", Description: "Create quotation"},
		{ID: uuid.New(), Name: "quotation:read", Resource: "quotation", Action: "read", Description: "View quotations"},
		{ID: uuid.New(), Name: "quotation:update", Resource: "quotation", Action: "update", Description: "Edit quotation"},
		{ID: uuid.New(), Name: "quotation:delete", Resource: "quotation", Action: "delete", Description: "Delete quotation"},

		// Services (pricing)
		{ID: uuid.New(), Name: "service:create", Resource: "service", Action: "create", Description: "Create service pricing"},
		{ID: uuid.New(), Name: "service:read", Resource: "service", Action: "read", Description: "View service pricing"},
		{ID: uuid.New(), Name: "service:update", Resource: "service", Action: "update", Description: "Edit service pricing"},
		{ID: uuid.New(), Name: "service:delete", Resource: "service", Action: "delete", Description: "Delete service pricing"},

		// Documents
		{ID: uuid.New(), Name: "document:read", Resource: "document", Action: "read", Description: "View uploaded documents"},
		{ID: uuid.New(), Name: "document:verify", Resource: "document", Action: "verify", Description: "Verify or reject uploaded documents"},
		{ID: uuid.New(), Name: "document:requirement", Resource: "document", Action: "requirement", Description: "Manage document requirements"},

		// Donations
		{ID: uuid.New(), Name: "donation:read", Resource: "donation", Action: "read", Description: "View donations"},

		// Messages
		{ID: uuid.New(), Name: "message:read", Resource: "message", Action: "read", Description: "View all client messages"},
		{ID: uuid.New(), Name: "message:send", Resource: "message", Action: "send", Description: "Send messages to clients"},

		// Reports & Exports
		{ID: uuid.New(), Name: "report:read", Resource: "report", Action: "read", Description: "View reports"},
		{ID: uuid.New(), Name: "report:export", Resource: "report", Action: "export", Description: "Export payment and quotation reports"},

		// Admin / Users / Roles
		{ID: uuid.New(), Name: "user:create", Resource: "user", Action: "create", Description: "Create user"},
		{ID: uuid.New(), Name: "user:read", Resource: "user", Action: "read", Description: "View user"},
		{ID: uuid.New(), Name: "user:update", Resource: "user", Action: "update", Description: "Edit user"},
		{ID: uuid.New(), Name: "user:delete", Resource: "user", Action: "delete", Description: "Delete user"},
		{ID: uuid.New(), Name: "role:read", Resource: "role", Action: "read", Description: "View roles"},
		{ID: uuid.New(), Name: "role:assign", Resource: "role", Action: "assign", Description: "Assign role to user"},
	}

	// Create permissions if they don't exist
	for _, perm := range permissions {
		var existingPerm models.Permission
		if err := DB.Where("name = ?", perm.Name).First(&existingPerm).Error; err != nil {
			if err := DB.Create(&perm).Error; err != nil {
				log.Printf("Error creating permission %s: %v", perm.Name, err)
			} else {
				log.Printf("Created permission: %s", perm.Name)
			}
		}
	}

	// Load all permissions
	var allPerms []models.Permission
	if err := DB.Find(&allPerms).Error; err != nil {
		log.Fatalf("Failed to load permissions: %v", err)
	}
	permMap := make(map[string]models.Permission)
	for _, p := range allPerms {
		permMap[p.Name] = p
	}
	log.Printf("Loaded %d permissions", len(permMap))

	// Define roles
	roles := []models.Role{
		{
			Name:        "super_admin",
			Description: "Full system access",
			Level:       0,
			Permissions: []models.Permission{{Name: "*:*"}},
		},
		{
			Name:        "admin",
			Description: "Portal admin: clients, payments, quotations, pricing, documents, reports",
			IsActive:    true,
			Level:       1,
			Permissions: []models.Permission{
				{Name: "client:create"}, {Name: "client:read"}, {Name: "client:update"}, {Name: "client:delete"},
				{Name: "payment:create"}, {Name: "payment:read"}, {Name: "payment:update"}, {Name: "payment:delete"}, {Name: "payment:approve"},
				{Name: "quotation:create"}, {Name: "quotation:read"}, {Name: "quotation:update"}, {Name: "quotation:delete"},
				{Name: "service:create"}, {Name: "service:read"}, {Name: "service:update"}, {Name: "service:delete"},
				{Name: "document:read"}, {Name: "document:verify"}, {Name: "document:requirement"},
				{Name: "donation:read"},
				{Name: "message:read"}, {Name: "message:send"},
				{Name: "report:read"}, {Name: "report:export"},
				{Name: "user:create"}, {Name: "user:read"}, {Name: "user:update"},
				{Name: "role:read"}, {Name: "role:assign"},
			},
		},
		{
			Name:        "staff",
			Description: "Support staff: read access plus document verification and messaging",
			IsActive:    true,
			Level:       2,
			Permissions: []models.Permission{
				{Name: "client:read"},
				{Name: "payment:read"},
				{Name: "quotation:read"},
				{Name: "service:read"},
				{Name: "document:read"}, {Name: "document:verify"},
				{Name: "message:read"}, {Name: "message:send"},
				{Name: "report:read"},
			},
		},
		{
			Name:        "client",
			Description: "Portal client: own payments, documents and messages only",
			IsActive:    true,
			Level:       5,
			Permissions:  []models.Permission{},
		},
	}

	for _, roleData := range roles {
		var role models.Role
		err := DB.Where("name = ?", roleData.Name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = models.Role{
				Name:        roleData.Name,
				Description: roleData.Description,
				IsActive:    roleData.IsActive,
				Level:       roleData.Level,
			}
			if err := DB.Create(&role).Error; err != nil {
				log.Printf("Error creating role %s: %v", roleData.Name, err)
				continue
			}
			log.Printf("Created role: %s", roleData.Name)
		} else if err != nil {
			log.Printf("DB error fetching role %s: %v", roleData.Name, err)
			continue
		}

		// Build permission list
		var permsToAssign []models.Permission
		for _, p := range roleData.Permissions {
			if dbPerm, ok := permMap[p.Name]; ok {
				permsToAssign = append(permsToAssign, dbPerm)
			}
		}

		// Clear existing permissions
		DB.Exec("DELETE FROM role_permissions WHERE role_id = ?", role.ID)

		// Assign permissions
		for _, perm := range permsToAssign {
			rolePermission := models.RolePermission{
				RoleID:       role.ID,
				PermissionID: perm.ID,
				CreatedAt:    time.Now(),
			}
			DB.Create(&rolePermission)
		}

		var assignedCount int64
		DB.Table("role_permissions").Where("role_id = ?", role.ID).Count(&assignedCount)
		log.Printf("Assigned %d permissions to role '%s'", assignedCount, role.Name)
	}
}

// =====================================================
// Services Seeding
// =====================================================

func step(n int) *int { return &n }

// SeedServices creates the default service pricing templates. Totals are
// derived from the line items, never stored by hand.
func SeedServices() {
	defaultServices := []models.Service{
		{
			ServiceName: "NCLEX Application - New York",
			State:       "New York",
			PaymentType: models.QuotationPaymentStaggered,
			LineItems: models.LineItems{
				{Description: "Credential evaluation (CGFNS)", Amount: 350.00, Step: step(1)},
				{Description: "Application processing fee", Amount: 250.00, Step: step(1)},
				{Description: "Pearson VUE exam registration", Amount: 200.00, Step: step(2)},
				{Description: "Courier and documentation", Amount: 50.00, Step: step(2)},
			},
		},
		{
			ServiceName: "NCLEX Application - California",
			State:       "California",
			PaymentType: models.QuotationPaymentStaggered,
			LineItems: models.LineItems{
				{Description: "BRN application fee", Amount: 300.00, Step: step(1)},
				{Description: "Application processing fee", Amount: 250.00, Step: step(1)},
				{Description: "Pearson VUE exam registration", Amount: 200.00, Step: step(2)},
				{Description: "Fingerprinting", Amount: 60.00, Step: step(2)},
			},
		},
		{
			ServiceName: "Immigration Consultation Package",
			PaymentType: models.QuotationPaymentFull,
			LineItems: models.LineItems{
				{Description: "Consultation and case assessment", Amount: 400.00},
				{Description: "Document preparation", Amount: 300.00},
			},
		},
	}

	for i := range defaultServices {
		svc := &defaultServices[i]
		var existing models.Service
		err := DB.Where("service_name = ?", svc.ServiceName).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			svc.RecalculateTotals()
			if err := DB.Create(svc).Error; err != nil {
				log.Printf("Error creating service %s: %v", svc.ServiceName, err)
				continue
			}
			log.Printf("Created service: %s (total %.2f)", svc.ServiceName, svc.TotalFull)
		}
	}
}

// =====================================================
// Document Requirements Seeding
// =====================================================

// SeedDocumentRequirements inserts the fallback upload slots for each known
// service type so the table is never empty on a fresh install
func SeedDocumentRequirements() {
	serviceTypes := []string{"nclex", "immigration"}

	for _, st := range serviceTypes {
		var count int64
		DB.Model(&models.ServiceDocumentRequirement{}).Where("service_type = ?", st).Count(&count)
		if count > 0 {
			continue
		}
		for _, req := range models.FallbackDocumentRequirements(st) {
			r := req
			if err := DB.Create(&r).Error; err != nil {
				log.Printf("Error creating document requirement %s/%s: %v", st, r.DocumentType, err)
			}
		}
		log.Printf("Seeded document requirements for service type: %s", st)
	}
}

// =====================================================
// Default Users Seeding
// =====================================================

// SeedUsers creates the initial admin accounts
func SeedUsers() {
	var superAdminRole, adminRole models.Role
	if err := DB.Where("name = ?", "super_admin").First(&superAdminRole).Error; err != nil {
		log.Printf("Error: super_admin role not found. Run SeedPermissions first: %v", err)
		return
	}
	DB.Where("name = ?", "admin").First(&adminRole)

	defaultPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if defaultPassword == "" {
		defaultPassword = "Welcome@123"
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return
	}

	usersToSeed := []struct {
		FirstName string
		LastName  string
		Email     string
		Mobile    string
		RoleID    *uuid.UUID
	}{
		{FirstName: "Super", LastName: "Admin", Email: "admin@nlas.ph", Mobile: "+639000000001", RoleID: &superAdminRole.ID},
		{FirstName: "Portal", LastName: "Admin", Email: "portal.admin@nlas.ph", Mobile: "+639000000002", RoleID: &adminRole.ID},
	}

	for _, u := range usersToSeed {
		var existing models.User
		err := DB.Where("email = ?", u.Email).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user := models.User{
				FirstName:    u.FirstName,
				LastName:     u.LastName,
				Email:        u.Email,
				Mobile:       u.Mobile,
				PasswordHash: string(passwordHash),
				RoleID:       u.RoleID,
				IsActive:     true,
			}
			if err := DB.Create(&user).Error; err != nil {
				log.Printf("Error creating user %s: %v", u.Email, err)
				continue
			}
			log.Printf("Created user: %s", u.Email)
		}
	}
}
