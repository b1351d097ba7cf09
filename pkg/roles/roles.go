package roles

// Role kullanıcının yetki seviyesini temsil eder
type Role string

const (
	User       Role = "user"
	Admin      Role = "admin"
	SuperAdmin Role = "superadmin"
)

// HierarchyLevel rol hiyerarşisindeki seviyeyi belirler
type HierarchyLevel int

const (
	UserLevel       HierarchyLevel = 1
	AdminLevel      HierarchyLevel = 2
	SuperAdminLevel HierarchyLevel = 3
)

// GetHierarchyLevel verilen rol için hiyerarşi seviyesini döndürür
func (r Role) GetHierarchyLevel() HierarchyLevel {
	switch r {
	case User:
		return UserLevel
	case Admin:
		return AdminLevel
	case SuperAdmin:
		return SuperAdminLevel
	default:
		return UserLevel
	}
}

// HasPermission rolün gerekli yetkiye sahip olup olmadığını kontrol eder
func (r Role) HasPermission(requiredRole Role) bool {
	return r.GetHierarchyLevel() >= requiredRole.GetHierarchyLevel()
}

// IsValid rolün geçerli olup olmadığını kontrol eder
func (r Role) IsValid() bool {
	switch r {
	case User, Admin, SuperAdmin:
		return true
	default:
		return false
	}
}

// String rolün string karşılığını döndürür
func (r Role) String() string {
	return string(r)
}
