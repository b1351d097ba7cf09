package inventory

// ItemRequest carries the full field set for create and update; updates are
// full field replaces.
type ItemRequest struct {
	InventoryNo      string `json:"inventory_no" binding:"required"`
	ComputerName     string `json:"computer_name"`
	FactoryID        int    `json:"factory_id" binding:"required"`
	Department       string `json:"department" binding:"required"`
	HardwareTypeID   int    `json:"hardware_type_id" binding:"required"`
	BrandID          int    `json:"brand_id" binding:"required"`
	ModelID          int    `json:"model_id" binding:"required"`
	ResponsibleID    *int   `json:"responsible_id"`
	SerialNo         string `json:"serial_no"`
	IfsNo            string `json:"ifs_no"`
	MachineNo        string `json:"machine_no"`
	RelatedMachineNo string `json:"related_machine_no"`
	IPAddress        string `json:"ip_address"`
	MacAddress       string `json:"mac_address"`
	Note             string `json:"note"`
}

type AssignRequest struct {
	FactoryID     *int    `json:"factory_id"`
	Department    *string `json:"department"`
	ResponsibleID *int    `json:"responsible_id"`
	Note          string  `json:"note"`
}

type NoteRequest struct {
	Note string `json:"note"`
}

type FaultRequest struct {
	Reason   string `json:"reason"`
	Location string `json:"location"`
}

type CreateLicenseRequest struct {
	Name string `json:"name" binding:"required"`
}

// ItemFilters narrows inventory listings; zero values mean "no filter".
type ItemFilters struct {
	Status        string
	Department    string
	FactoryID     *int
	ResponsibleID *int
}
