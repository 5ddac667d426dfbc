// Package student defines the student record, its closed set of field
// identifiers, and the in-memory search used by the listing.
package student

import "time"

// Record is one student's admission record. Every form value is kept as the
// string that was typed, numbers included.
type Record struct {
	ID string `json:"id"`

	Name               string `json:"name"`
	RollNo             string `json:"rollNo"`
	ClassBranchSection string `json:"classBranchSection"`
	YearOfStudy        string `json:"yearOfStudy"`
	StudentEmail       string `json:"studentEmail"`
	StudentMobile      string `json:"studentMobile"`
	Caste              string `json:"caste"`
	Community          string `json:"community"`
	Religion           string `json:"religion"`

	ResidentialAddress1 string `json:"residentialAddress1"`
	ResidentialAddress2 string `json:"residentialAddress2"`
	ResidentialAddress3 string `json:"residentialAddress3"`
	ResidentialCity     string `json:"residentialCity"`
	ResidentialState    string `json:"residentialState"`
	ResidentialPincode  string `json:"residentialPincode"`

	FatherName       string `json:"fatherName"`
	FatherOccupation string `json:"fatherOccupation"`
	FatherIncome     string `json:"fatherIncome"`
	FatherMobile     string `json:"fatherMobile"`
	MotherName       string `json:"motherName"`
	MotherOccupation string `json:"motherOccupation"`
	MotherIncome     string `json:"motherIncome"`
	MotherMobile     string `json:"motherMobile"`

	LocalGuardianName     string `json:"localGuardianName"`
	LocalGuardianAddress1 string `json:"localGuardianAddress1"`
	LocalGuardianAddress2 string `json:"localGuardianAddress2"`
	LocalGuardianAddress3 string `json:"localGuardianAddress3"`
	LocalGuardianCity     string `json:"localGuardianCity"`
	LocalGuardianState    string `json:"localGuardianState"`
	LocalGuardianPincode  string `json:"localGuardianPincode"`
	LocalGuardianMobile   string `json:"localGuardianMobile"`

	Siblings       string `json:"siblings"`
	SiblingDetails string `json:"siblingDetails"`
	BloodGroup     string `json:"bloodGroup"`
	Allergies      string `json:"allergies"`
	HealthProblems string `json:"healthProblems"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Get returns the value of f.
func (r *Record) Get(f Field) string {
	if p := r.ref(f); p != nil {
		return *p
	}
	return ""
}

// Set writes value into f. It reports false for an unknown field.
func (r *Record) Set(f Field, value string) bool {
	p := r.ref(f)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Values returns the form values keyed by field, in form order.
func (r *Record) Values() map[Field]string {
	out := make(map[Field]string, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		out[spec.field] = r.Get(spec.field)
	}
	return out
}

func (r *Record) ref(f Field) *string {
	switch f {
	case Name:
		return &r.Name
	case RollNo:
		return &r.RollNo
	case ClassBranchSection:
		return &r.ClassBranchSection
	case YearOfStudy:
		return &r.YearOfStudy
	case StudentEmail:
		return &r.StudentEmail
	case StudentMobile:
		return &r.StudentMobile
	case Caste:
		return &r.Caste
	case Community:
		return &r.Community
	case Religion:
		return &r.Religion
	case ResidentialAddress1:
		return &r.ResidentialAddress1
	case ResidentialAddress2:
		return &r.ResidentialAddress2
	case ResidentialAddress3:
		return &r.ResidentialAddress3
	case ResidentialCity:
		return &r.ResidentialCity
	case ResidentialState:
		return &r.ResidentialState
	case ResidentialPincode:
		return &r.ResidentialPincode
	case FatherName:
		return &r.FatherName
	case FatherOccupation:
		return &r.FatherOccupation
	case FatherIncome:
		return &r.FatherIncome
	case FatherMobile:
		return &r.FatherMobile
	case MotherName:
		return &r.MotherName
	case MotherOccupation:
		return &r.MotherOccupation
	case MotherIncome:
		return &r.MotherIncome
	case MotherMobile:
		return &r.MotherMobile
	case LocalGuardianName:
		return &r.LocalGuardianName
	case LocalGuardianAddress1:
		return &r.LocalGuardianAddress1
	case LocalGuardianAddress2:
		return &r.LocalGuardianAddress2
	case LocalGuardianAddress3:
		return &r.LocalGuardianAddress3
	case LocalGuardianCity:
		return &r.LocalGuardianCity
	case LocalGuardianState:
		return &r.LocalGuardianState
	case LocalGuardianPincode:
		return &r.LocalGuardianPincode
	case LocalGuardianMobile:
		return &r.LocalGuardianMobile
	case Siblings:
		return &r.Siblings
	case SiblingDetails:
		return &r.SiblingDetails
	case BloodGroup:
		return &r.BloodGroup
	case Allergies:
		return &r.Allergies
	case HealthProblems:
		return &r.HealthProblems
	}
	return nil
}
