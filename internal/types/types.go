// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, the service, storage backends and validation can all import
// types without depending on each other.
package types

import (
	"encoding/json"
	"strings"
)

// Gender is one of the fixed values accepted for Student.Gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOthers Gender = "others"
)

// BloodGroup is optional; the zero value means "not provided".
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

// ActiveStatus controls whether a student may use the system.
type ActiveStatus string

const (
	StatusActive  ActiveStatus = "active"
	StatusBlocked ActiveStatus = "blocked"
)

// UserName is the nested name value of a Student.
type UserName struct {
	FirstName  string `json:"firstName" bson:"firstName" validate:"required,max=20,capitalized"`
	MiddleName string `json:"middleName,omitempty" bson:"middleName,omitempty"`
	LastName   string `json:"lastName" bson:"lastName" validate:"required,alpha"`
}

// Guardian holds the parents' details. Every field is required.
//
// The occupation bson keys keep the spelling of documents already in the
// students collection.
type Guardian struct {
	FatherName       string `json:"fatherName" bson:"fatherName" validate:"required"`
	FatherOccupation string `json:"fatherOccupation" bson:"fatherOcupation" validate:"required"`
	FatherContactNo  string `json:"fatherContactNo" bson:"fatherContactNo" validate:"required"`
	MotherName       string `json:"motherName" bson:"motherName" validate:"required"`
	MotherOccupation string `json:"motherOccupation" bson:"motherOcupation" validate:"required"`
	MotherContactNo  string `json:"motherContactNo" bson:"motherContactNo" validate:"required"`
}

// LocalGuardian is the person responsible for the student near campus.
type LocalGuardian struct {
	Name       string `json:"name" bson:"name" validate:"required"`
	Occupation string `json:"occupation" bson:"occupation" validate:"required"`
	ContactNo  string `json:"contactNo" bson:"contactNo" validate:"required"`
	Address    string `json:"address" bson:"address" validate:"required"`
}

// Student represents a student record in our system.
//
// Struct tags serve three purposes:
//
//  1. json:"..."     how the field appears in request/response bodies.
//  2. bson:"..."     the field name inside the MongoDB document.
//  3. validate:"..." rules checked by the go-playground/validator
//     package (see internal/validation for the custom ones).
//
// Password holds the plaintext on the way in, the bcrypt hash while
// stored, and "" on every value handed back to callers.
type Student struct {
	ID                 string        `json:"id" bson:"id" validate:"required"`
	Password           string        `json:"password" bson:"password" validate:"required"`
	Name               UserName      `json:"name" bson:"name"`
	Gender             Gender        `json:"gender" bson:"gender" validate:"required,oneof=male female others"`
	DateOfBirth        string        `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	Email              string        `json:"email" bson:"email" validate:"required,email"`
	ContactNo          string        `json:"contactNo" bson:"contactNo" validate:"required"`
	EmergencyContactNo string        `json:"emergencyContactNo" bson:"emergencyContactNo" validate:"required"`
	BloodGroup         BloodGroup    `json:"bloodGroup,omitempty" bson:"bloodGroup,omitempty" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	PresentAddress     string        `json:"presentAddress" bson:"presentAddress" validate:"required"`
	PermanentAddress   string        `json:"permanentAddress" bson:"permanentAddress" validate:"required"`
	Guardian           Guardian      `json:"guardian" bson:"guardian"`
	LocalGuardian      LocalGuardian `json:"localGuardian" bson:"localGuardian"`
	ProfileImg         string        `json:"profileImg,omitempty" bson:"profileImg,omitempty"`
	IsActive           ActiveStatus  `json:"isActive" bson:"isActive" validate:"required,oneof=active blocked"`
	IsDeleted          bool          `json:"isDeleted" bson:"isDeleted"`
}

// FullName joins the name parts, skipping an empty middle name.
func (s Student) FullName() string {
	parts := []string{s.Name.FirstName, s.Name.MiddleName, s.Name.LastName}

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return strings.Join(nonEmpty, " ")
}

// MarshalJSON adds the derived "fullName" field to the encoded student.
func (s Student) MarshalJSON() ([]byte, error) {
	// The alias drops the method set, so json.Marshal does not recurse
	// back into this function.
	type plain Student

	return json.Marshal(struct {
		plain
		FullName string `json:"fullName"`
	}{
		plain:    plain(s),
		FullName: s.FullName(),
	})
}

// DeleteResult is the outcome of a soft delete: how many records matched
// the id and how many actually flipped to isDeleted=true.
type DeleteResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}
