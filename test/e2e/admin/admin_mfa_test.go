package admin_test

import (
	"testing"
	"time"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// mfaTestAccount carries the enrollment state shared by the MFA tests.
type mfaTestAccount struct {
	Username    string
	Password    string
	TOTPSecret  string
	BackupCodes []string
}

// TestMFAEnrollmentAndLogin tests the complete MFA enrollment and login flow:
// 1. Enroll TOTP and verify with a generated code
// 2. Receive backup codes
// 3. Plain login now returns an MFA challenge
// 4. Complete the challenge with a TOTP code
// 5. Complete a second challenge with a backup code
// 6. Backup codes are single use
func TestMFAEnrollmentAndLogin(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)

	adminSession := loginAdmin(t, client)
	account := enrollMFAAccount(t, client, adminSession, "mfastaff")
	t.Logf("MFA enrollment completed, received %d backup codes", len(account.BackupCodes))

	backupCode := account.BackupCodes[0]

	// Plain login is now challenged
	challenge := expectMFAChallenge(t, client, account)
	require.Contains(t, challenge.Methods, "totp")
	require.Contains(t, challenge.Methods, "backup_codes")
	t.Logf("Received MFA challenge with methods: %v", challenge.Methods)

	// Complete with TOTP
	session, err := client.AuthenticateWithMFA(t.Context(), challenge, "totp", generateTOTP(t, account.TOTPSecret))
	require.NoError(t, err)

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.True(t, me.MFAEnabled, "Profile should report MFA enabled")
	t.Logf("Successfully authenticated with TOTP")

	// Complete with a backup code
	challenge2 := expectMFAChallenge(t, client, account)
	_, err = client.AuthenticateWithMFA(t.Context(), challenge2, "backup_codes", backupCode)
	require.NoError(t, err)
	t.Logf("Successfully authenticated with backup code")

	// The same backup code cannot be used twice
	challenge3 := expectMFAChallenge(t, client, account)
	_, err = client.AuthenticateWithMFA(t.Context(), challenge3, "backup_codes", backupCode)
	assertUnauthorized(t, err, "Backup code reuse")
	t.Logf("Backup code reuse correctly rejected")
}

// TestMFAEnrollTwice verifies enrollment is rejected once MFA is enabled.
func TestMFAEnrollTwice(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)

	adminSession := loginAdmin(t, client)
	account := enrollMFAAccount(t, client, adminSession, "mfastaff2")

	challenge := expectMFAChallenge(t, client, account)
	session, err := client.AuthenticateWithMFA(t.Context(), challenge, "totp", generateTOTP(t, account.TOTPSecret))
	require.NoError(t, err)

	_, err = session.EnrollTOTP(t.Context())
	assertConflict(t, err, "mfa_already_enabled", "Second enrollment")

	t.Logf("Second enrollment correctly rejected")
}

// TestMFAVerifyWithoutEnrollment verifies the verification endpoint rejects
// accounts that never enrolled.
func TestMFAVerifyWithoutEnrollment(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)

	_, err := session.VerifyTOTP(t.Context(), "123456")
	require.Error(t, err, "Verification without enrollment should fail")

	t.Logf("Verification without enrollment correctly rejected")
}

// TestMFARegenerateBackupCodes tests replacing the backup code set.
func TestMFARegenerateBackupCodes(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)

	adminSession := loginAdmin(t, client)
	account := enrollMFAAccount(t, client, adminSession, "mfastaff3")
	oldBackupCode := account.BackupCodes[0]

	challenge := expectMFAChallenge(t, client, account)
	session, err := client.AuthenticateWithMFA(t.Context(), challenge, "totp", generateTOTP(t, account.TOTPSecret))
	require.NoError(t, err)

	backupResp, err := session.RegenerateBackupCodes(t.Context(), generateTOTP(t, account.TOTPSecret))
	require.NoError(t, err)
	require.Len(t, backupResp.Codes, 10, "Should receive 10 new backup codes")
	t.Logf("Regenerated backup codes: %d codes", len(backupResp.Codes))

	// Old codes are dead
	challenge2 := expectMFAChallenge(t, client, account)
	_, err = client.AuthenticateWithMFA(t.Context(), challenge2, "backup_codes", oldBackupCode)
	require.Error(t, err, "Old backup code should not work after regeneration")

	// New codes work
	challenge3 := expectMFAChallenge(t, client, account)
	_, err = client.AuthenticateWithMFA(t.Context(), challenge3, "backup_codes", backupResp.Codes[0])
	require.NoError(t, err, "New backup code should work")

	t.Logf("Old codes invalidated, new codes work")
}

// TestMFARemoval tests removing the second factor from an account.
func TestMFARemoval(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)

	adminSession := loginAdmin(t, client)
	account := enrollMFAAccount(t, client, adminSession, "mfastaff4")

	challenge := expectMFAChallenge(t, client, account)
	session, err := client.AuthenticateWithMFA(t.Context(), challenge, "totp", generateTOTP(t, account.TOTPSecret))
	require.NoError(t, err)

	err = session.RemoveTOTP(t.Context(), generateTOTP(t, account.TOTPSecret))
	require.NoError(t, err)
	t.Logf("MFA removed from account")

	// Plain login works again without a challenge
	newSession, err := client.AuthenticateWithPassword(t.Context(), account.Username, account.Password)
	require.NoError(t, err, "Login should not be challenged after MFA removal")

	me, err := newSession.Me(t.Context())
	require.NoError(t, err)
	require.False(t, me.MFAEnabled, "Profile should report MFA disabled")

	t.Logf("Login works without MFA after removal")
}

// TestMFAAttemptLimiting tests that MFA challenges are destroyed after too
// many failed codes, so TOTP cannot be brute forced within a challenge.
func TestMFAAttemptLimiting(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)

	adminSession := loginAdmin(t, client)
	account := enrollMFAAccount(t, client, adminSession, "mfastaff5")

	challenge := expectMFAChallenge(t, client, account)

	// Burn through the allowed attempts with a wrong code
	for i := 1; i <= 5; i++ {
		_, err := client.AuthenticateWithMFA(t.Context(), challenge, "totp", "000000")
		require.Error(t, err, "Attempt %d: should reject invalid TOTP code", i)
	}
	t.Logf("Completed 5 failed attempts")

	// The challenge is now destroyed, so even the correct code is rejected
	_, err := client.AuthenticateWithMFA(t.Context(), challenge, "totp", generateTOTP(t, account.TOTPSecret))
	require.Error(t, err, "Should reject even a valid code after max attempts")
	t.Logf("Valid code correctly rejected after challenge destruction")

	// A fresh challenge works
	challenge2 := expectMFAChallenge(t, client, account)
	_, err = client.AuthenticateWithMFA(t.Context(), challenge2, "totp", generateTOTP(t, account.TOTPSecret))
	require.NoError(t, err, "Fresh challenge should work")
	t.Logf("Fresh MFA challenge works after previous one was invalidated")
}

// TestMFAInvalidChallengeToken verifies a made-up challenge reference is
// rejected.
func TestMFAInvalidChallengeToken(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)

	_, err := client.CompleteMFA(t.Context(), "invalid-mfa-token", "totp", "000000")
	assertUnauthorized(t, err, "Completion with invalid challenge token")

	t.Logf("Invalid challenge token correctly rejected")
}

// ==============================
// Helper functions for MFA tests
// ==============================

// enrollMFAAccount creates a staff account and walks it through the full
// TOTP enrollment: enroll, verify a generated code, collect backup codes.
func enrollMFAAccount(t *testing.T, client *adminsdk.SDKClient, adminSession *adminsdk.Session, username string) *mfaTestAccount {
	t.Helper()

	_, session := createStaffUser(t, client, adminSession, username, "admin")
	account := &mfaTestAccount{
		Username: username,
		Password: "Staff123!",
	}

	enrollResp, err := session.EnrollTOTP(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, enrollResp.Secret, "TOTP secret should be returned")
	require.NotEmpty(t, enrollResp.QRCode, "QR code URL should be returned")
	require.Contains(t, enrollResp.QRCode, "otpauth://totp/", "QR code should be an otpauth URL")

	account.TOTPSecret = enrollResp.Secret

	backupResp, err := session.VerifyTOTP(t.Context(), generateTOTP(t, account.TOTPSecret))
	require.NoError(t, err)
	require.Len(t, backupResp.Codes, 10, "Should receive 10 backup codes")

	account.BackupCodes = backupResp.Codes
	return account
}

// generateTOTP generates a TOTP code for the given secret.
func generateTOTP(t *testing.T, secret string) string {
	t.Helper()

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	return code
}

// expectMFAChallenge performs a password login that must come back as an
// MFA challenge, and returns the challenge.
func expectMFAChallenge(t *testing.T, client *adminsdk.SDKClient, account *mfaTestAccount) *adminsdk.MFARequiredError {
	t.Helper()

	_, err := client.Login(t.Context(), account.Username, account.Password)
	require.Error(t, err, "Login should be challenged")

	var mfaErr *adminsdk.MFARequiredError
	require.ErrorAs(t, err, &mfaErr, "Error should be MFARequiredError")
	require.NotEmpty(t, mfaErr.MFAToken, "Challenge token should be present")
	require.NotEmpty(t, mfaErr.Methods, "Challenge methods should be present")

	return mfaErr
}
