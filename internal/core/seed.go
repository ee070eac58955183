package core

// DefaultCustomers is the customer set loaded when no seed file is configured.
func DefaultCustomers() []NewRecord {
	return []NewRecord{
		{Name: "John Doe", Email: "john@example.com", Phone: "(11) 99999-9999", Category: "Retail", Orders: 5},
		{Name: "Jane Smith", Email: "jane@example.com", Phone: "(11) 88888-8888", Category: "Wholesale", Orders: 3},
		{Name: "Bob Johnson", Email: "bob@example.com", Phone: "(11) 77777-7777", Category: "Retail", Orders: 8},
	}
}
