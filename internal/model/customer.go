package model

// Customer represents a customer of the shop
type Customer struct {
	Record
	Name         string `json:"name" gorm:"type:varchar(255);not null"`
	Email        string `json:"email" gorm:"type:varchar(255)"`
	Phone        string `json:"phone" gorm:"type:varchar(30)"`
	BirthDate    string `json:"birth_date" gorm:"type:varchar(10)"`
	Address      string `json:"address" gorm:"type:varchar(255)"`
	Complement   string `json:"complement" gorm:"type:varchar(255)"`
	Neighborhood string `json:"neighborhood" gorm:"type:varchar(255)"`
	ZipCode      string `json:"zip_code" gorm:"type:varchar(20)"`
}

// CustomerFields carries customer field values; nil fields are left untouched on update
type CustomerFields struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Email        *string `json:"email" validate:"omitempty,email,max=255"`
	Phone        *string `json:"phone" validate:"omitempty,max=30"`
	BirthDate    *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Address      *string `json:"address" validate:"omitempty,max=255"`
	Complement   *string `json:"complement" validate:"omitempty,max=255"`
	Neighborhood *string `json:"neighborhood" validate:"omitempty,max=255"`
	ZipCode      *string `json:"zip_code" validate:"omitempty,max=20"`
}

// Apply merges the supplied fields into c
func (f CustomerFields) Apply(c *Customer) {
	setString(&c.Name, f.Name)
	setString(&c.Email, f.Email)
	setString(&c.Phone, f.Phone)
	setString(&c.BirthDate, f.BirthDate)
	setString(&c.Address, f.Address)
	setString(&c.Complement, f.Complement)
	setString(&c.Neighborhood, f.Neighborhood)
	setString(&c.ZipCode, f.ZipCode)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
