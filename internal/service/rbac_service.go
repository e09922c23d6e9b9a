package service

import (
	"context"
	"encoding/json"
	"fmt"

	"accessapi/internal/logging"
	"accessapi/internal/model"
	"accessapi/internal/repository"
)

type RBACService interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	ListModules(ctx context.Context) ([]model.Module, error)
	ListResources(ctx context.Context) ([]model.Resource, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	PermissionsForRole(ctx context.Context, roleID uint) ([]model.ResourcePermission, error)
	Seed(ctx context.Context) (*SeedResult, error)
}

// SeedResult counts the rows a seed run actually inserted. A re-run reports all zeros.
type SeedResult struct {
	Roles       int `json:"roles"`
	Modules     int `json:"modules"`
	Resources   int `json:"resources"`
	Permissions int `json:"permissions"`
	Grants      int `json:"grants"`
}

func (r SeedResult) Total() int {
	return r.Roles + r.Modules + r.Resources + r.Permissions + r.Grants
}

type rbacService struct {
	repo      repository.RBACRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewRBACService(
	repo repository.RBACRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) RBACService {
	return &rbacService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func (s *rbacService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *rbacService) ListModules(ctx context.Context) ([]model.Module, error) {
	return s.repo.ListModules(ctx)
}

func (s *rbacService) ListResources(ctx context.Context) ([]model.Resource, error) {
	return s.repo.ListResources(ctx)
}

func (s *rbacService) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *rbacService) PermissionsForRole(ctx context.Context, roleID uint) ([]model.ResourcePermission, error) {
	return s.repo.PermissionsForRole(ctx, roleID)
}

// Default RBAC catalogue.
const (
	RoleChristieAdmin     = "Christie Admin"
	RoleClientAdmin       = "Client Admin"
	RoleClientTechnician  = "Client Technician"
	RoleClientCleaner     = "Client Cleaner"
	RoleServiceTechnician = "Service Technician"
)

var defaultRoles = []model.Role{
	{Name: RoleChristieAdmin, Description: "All data points, access, and logs"},
	{Name: RoleClientAdmin, Description: "All client data points, parameters, and history"},
	{Name: RoleClientTechnician, Description: "All client data points, parameters, and history"},
	{Name: RoleClientCleaner, Description: "View and log cleans only"},
	{Name: RoleServiceTechnician, Description: "View only"},
}

var defaultModules = []model.Module{
	{Name: "Cleaning", Description: "Cleaning interface and logs"},
	{Name: "Firmware", Description: "Firmware update and versioning"},
	{Name: "Configuration", Description: "Device configuration and parameters"},
	{Name: "Telemetry", Description: "Device telemetry and data points"},
	{Name: "OTA Update", Description: "Over-the-air firmware updates"},
	{Name: "Device Management", Description: "Device registration and management"},
	{Name: "LTE", Description: "LTE module and telemetry"},
}

// defaultResources[i] belongs to defaultModules[i].
var defaultResources = []model.Resource{
	{Name: "cleaning_screen", Description: "Cleaning screen"},
	{Name: "firmware_update", Description: "Firmware update screen"},
	{Name: "config_params", Description: "Configuration parameters"},
	{Name: "telemetry_data", Description: "Telemetry data"},
	{Name: "ota_update", Description: "OTA update"},
	{Name: "device_registration", Description: "Device registration"},
	{Name: "lte_telemetry", Description: "LTE telemetry"},
}

var defaultPermissions = []model.Permission{
	{Name: "view", Description: "View resource"},
	{Name: "edit", Description: "Edit resource"},
	{Name: "register", Description: "Register clean or device"},
	{Name: "update", Description: "Update resource"},
	{Name: "delete", Description: "Delete resource"},
	{Name: "upload_firmware", Description: "Upload firmware"},
	{Name: "read_param", Description: "Read parameter"},
	{Name: "write_param", Description: "Write parameter"},
}

type grantSpec struct {
	role        string
	resource    string
	permissions []string
}

var defaultGrants = []grantSpec{
	{role: RoleClientCleaner, resource: "cleaning_screen", permissions: []string{"view", "register"}},
	{role: RoleServiceTechnician, resource: "telemetry_data", permissions: []string{"view"}},
}

// Seed installs the default catalogue in one transaction. Every row is find-or-create by its unique
// key, so running it again inserts nothing. The Christie Admin role is granted every permission on
// every resource.
func (s *rbacService) Seed(ctx context.Context) (*SeedResult, error) {
	l := logging.FromContext(ctx).With("svc", "rbac.seed")
	res := &SeedResult{}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		roles := make(map[string]uint, len(defaultRoles))
		for _, def := range defaultRoles {
			role := def
			created, err := s.repo.FindOrCreateRole(txCtx, &role)
			if err != nil {
				return fmt.Errorf("seed role %q: %w", def.Name, err)
			}
			if created {
				res.Roles++
			}
			roles[role.Name] = role.ID
		}

		modules := make([]uint, 0, len(defaultModules))
		for _, def := range defaultModules {
			module := def
			created, err := s.repo.FindOrCreateModule(txCtx, &module)
			if err != nil {
				return fmt.Errorf("seed module %q: %w", def.Name, err)
			}
			if created {
				res.Modules++
			}
			modules = append(modules, module.ID)
		}

		resources := make(map[string]uint, len(defaultResources))
		resourceIDs := make([]uint, 0, len(defaultResources))
		for i, def := range defaultResources {
			resource := def
			resource.ModuleID = &modules[i]
			created, err := s.repo.FindOrCreateResource(txCtx, &resource)
			if err != nil {
				return fmt.Errorf("seed resource %q: %w", def.Name, err)
			}
			if created {
				res.Resources++
			}
			resources[resource.Name] = resource.ID
			resourceIDs = append(resourceIDs, resource.ID)
		}

		perms := make(map[string]uint, len(defaultPermissions))
		permIDs := make([]uint, 0, len(defaultPermissions))
		for _, def := range defaultPermissions {
			perm := def
			created, err := s.repo.FindOrCreatePermission(txCtx, &perm)
			if err != nil {
				return fmt.Errorf("seed permission %q: %w", def.Name, err)
			}
			if created {
				res.Permissions++
			}
			perms[perm.Name] = perm.ID
			permIDs = append(permIDs, perm.ID)
		}

		grant := func(roleID, resourceID, permID uint) error {
			created, err := s.repo.Grant(txCtx, roleID, resourceID, permID)
			if err != nil {
				return err
			}
			if created {
				res.Grants++
			}
			return nil
		}

		for _, g := range defaultGrants {
			for _, p := range g.permissions {
				if err := grant(roles[g.role], resources[g.resource], perms[p]); err != nil {
					return err
				}
			}
		}

		admin := roles[RoleChristieAdmin]
		for _, resourceID := range resourceIDs {
			for _, permID := range permIDs {
				if err := grant(admin, resourceID, permID); err != nil {
					return err
				}
			}
		}

		if res.Total() == 0 {
			return nil
		}
		details, _ := json.Marshal(res)
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Action:     model.ActionSeedRBAC,
			EntityName: "rbac",
			Details:    string(details),
		})
	})
	if err != nil {
		l.Error("seed_failed", "error", err)
		return nil, err
	}

	l.Info("seed_completed",
		"roles", res.Roles, "modules", res.Modules, "resources", res.Resources,
		"permissions", res.Permissions, "grants", res.Grants)
	return res, nil
}
