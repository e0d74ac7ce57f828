package testutil

import "github.com/tphakala/premigrate/internal/legacy"

// Ptr returns a pointer to s, for the nullable legacy columns.
func Ptr(s string) *string { return &s }

// RecordingBuilder provides a fluent API for building legacy recordings.
type RecordingBuilder struct {
	rec legacy.Recording
}

// NewRecordingBuilder creates a root recording of caseID with sensible
// defaults: version 1, available, created on 1 March 2024.
func NewRecordingBuilder(id, caseID string) *RecordingBuilder {
	return &RecordingBuilder{
		rec: legacy.Recording{
			RecordingUID:     id,
			CaseUID:          Ptr(caseID),
			ParentRecUID:     Ptr(id),
			RecordingVersion: Ptr("1"),
			Filename:         Ptr(id + ".mp4"),
			URL:              Ptr("https://media.example.com/" + id),
			Created:          Ptr("01/03/2024 10:00"),
		},
	}
}

// WithParent makes the recording a later version in the chain of parentID.
func (b *RecordingBuilder) WithParent(parentID string) *RecordingBuilder {
	b.rec.ParentRecUID = Ptr(parentID)
	return b
}

// WithVersion sets the legacy version string.
func (b *RecordingBuilder) WithVersion(version string) *RecordingBuilder {
	b.rec.RecordingVersion = Ptr(version)
	return b
}

// WithStatus sets the legacy recording status.
func (b *RecordingBuilder) WithStatus(status string) *RecordingBuilder {
	b.rec.RecordingStatus = Ptr(status)
	return b
}

// WithIngestAddress sets the ingest address.
func (b *RecordingBuilder) WithIngestAddress(addr string) *RecordingBuilder {
	b.rec.IngestAddress = Ptr(addr)
	return b
}

// WithCreated sets the creation timestamp (dd/mm/yyyy hh:mm).
func (b *RecordingBuilder) WithCreated(created string) *RecordingBuilder {
	b.rec.Created = Ptr(created)
	return b
}

// WithModified sets the modification timestamp (dd/mm/yyyy hh:mm).
func (b *RecordingBuilder) WithModified(modified string) *RecordingBuilder {
	b.rec.Modified = Ptr(modified)
	return b
}

// WithCreatedBy sets the creator email.
func (b *RecordingBuilder) WithCreatedBy(email string) *RecordingBuilder {
	b.rec.CreatedBy = Ptr(email)
	return b
}

// WithParticipants sets the comma separated defendant and witness ids.
func (b *RecordingBuilder) WithParticipants(defendants, witnesses string) *RecordingBuilder {
	if defendants != "" {
		b.rec.Defendants = Ptr(defendants)
	}
	if witnesses != "" {
		b.rec.WitnessNames = Ptr(witnesses)
	}
	return b
}

// Build returns the recording.
func (b *RecordingBuilder) Build() legacy.Recording {
	return b.rec
}

// CaseBuilder provides a fluent API for building legacy cases.
type CaseBuilder struct {
	c legacy.Case
}

// NewCaseBuilder creates an open case at court with sensible defaults.
func NewCaseBuilder(id, reference, court string) *CaseBuilder {
	return &CaseBuilder{
		c: legacy.Case{
			CaseUID:       id,
			CaseReference: Ptr(reference),
			Court:         Ptr(court),
			CaseStatus:    Ptr("Open"),
			Created:       Ptr("28/02/2024 09:00"),
		},
	}
}

// WithoutReference clears the case reference.
func (b *CaseBuilder) WithoutReference() *CaseBuilder {
	b.c.CaseReference = nil
	return b
}

// WithStatus sets the case status.
func (b *CaseBuilder) WithStatus(status string) *CaseBuilder {
	b.c.CaseStatus = Ptr(status)
	return b
}

// WithModified sets the modification timestamp.
func (b *CaseBuilder) WithModified(modified string) *CaseBuilder {
	b.c.Modified = Ptr(modified)
	return b
}

// Build returns the case.
func (b *CaseBuilder) Build() legacy.Case {
	return b.c
}

// UserBuilder provides a fluent API for building legacy users.
type UserBuilder struct {
	u legacy.User
}

// NewUserBuilder creates an enabled user with a confirmed email.
func NewUserBuilder(id, email string) *UserBuilder {
	return &UserBuilder{
		u: legacy.User{
			UserID:         id,
			Email:          Ptr(email),
			FirstName:      Ptr("Test"),
			LastName:       Ptr("User"),
			Organisation:   Ptr("Example Org"),
			LoginEnabled:   Ptr("True"),
			EmailConfirmed: Ptr("True"),
			Created:        Ptr("01/01/2024 08:00"),
		},
	}
}

// WithName sets the first and last name.
func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.u.FirstName = Ptr(first)
	b.u.LastName = Ptr(last)
	return b
}

// WithRole sets the legacy role.
func (b *UserBuilder) WithRole(role string) *UserBuilder {
	b.u.PreRole = Ptr(role)
	return b
}

// WithoutEmail clears the email.
func (b *UserBuilder) WithoutEmail() *UserBuilder {
	b.u.Email = nil
	return b
}

// Invited marks the user as invited to the portal.
func (b *UserBuilder) Invited() *UserBuilder {
	b.u.Invited = Ptr("True")
	b.u.LoginEnabled = Ptr("False")
	return b
}

// Build returns the user.
func (b *UserBuilder) Build() legacy.User {
	return b.u
}
