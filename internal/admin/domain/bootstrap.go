package domain

// BootstrapData is the first-run seed: the initial super_admin account.
type BootstrapData struct {
	AdminUsername string
	AdminEmail    string
	AdminFullName string
	AdminPassword string
}
