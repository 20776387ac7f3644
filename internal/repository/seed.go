package repository

import "github.com/opensource-health/heron/internal/domain"

// DefaultCatalog returns the default price list loaded when the item
// catalog is empty. Prices are BDT.
func DefaultCatalog() []domain.MedicalItem {
	return []domain.MedicalItem{
		// Outpatient items
		{Category: "Laboratory", Name: "Complete Blood Count", Price: 250, Currency: "BDT", IsOutpatient: true},
		{Category: "Laboratory", Name: "Urinalysis", Price: 150, Currency: "BDT", IsOutpatient: true},
		{Category: "Laboratory", Name: "Blood Chemistry", Price: 400, Currency: "BDT", IsOutpatient: true},
		{Category: "Laboratory", Name: "Liver Function Test", Price: 600, Currency: "BDT", IsOutpatient: true},
		{Category: "Laboratory", Name: "Kidney Function Test", Price: 550, Currency: "BDT", IsOutpatient: true},
		{Category: "Laboratory", Name: "Lipid Profile", Price: 450, Currency: "BDT", IsOutpatient: true},
		{Category: "Laboratory", Name: "Thyroid Function Test", Price: 800, Currency: "BDT", IsOutpatient: true},
		{Category: "Laboratory", Name: "Blood Sugar", Price: 100, Currency: "BDT", IsOutpatient: true},
		{Category: "Laboratory", Name: "HbA1c", Price: 650, Currency: "BDT", IsOutpatient: true},
		{Category: "Laboratory", Name: "ESR", Price: 120, Currency: "BDT", IsOutpatient: true},
		{Category: "X-Ray", Name: "Chest X-Ray", Price: 800, Currency: "BDT", IsOutpatient: true},
		{Category: "X-Ray", Name: "Extremity X-Ray", Price: 600, Currency: "BDT", IsOutpatient: true},
		{Category: "X-Ray", Name: "Spine X-Ray", Price: 900, Currency: "BDT", IsOutpatient: true},
		{Category: "X-Ray", Name: "Abdomen X-Ray", Price: 700, Currency: "BDT", IsOutpatient: true},
		{Category: "X-Ray", Name: "Pelvis X-Ray", Price: 750, Currency: "BDT", IsOutpatient: true},
		{Category: "Registration Fees", Name: "Outpatient Registration", Price: 100, Currency: "BDT", IsOutpatient: true},
		{Category: "Registration Fees", Name: "Emergency Registration", Price: 200, Currency: "BDT", IsOutpatient: true},
		{Category: "Registration Fees", Name: "Admission Fee", Price: 500, Currency: "BDT", IsOutpatient: true},
		{Category: "Registration Fees", Name: "ICU Admission", Price: 1000, Currency: "BDT", IsOutpatient: true},
		{Category: "Dr. Fees", Name: "General Consultation", Price: 500, Currency: "BDT", IsOutpatient: true},
		{Category: "Dr. Fees", Name: "Specialist Consultation", Price: 800, Currency: "BDT", IsOutpatient: true},
		{Category: "Dr. Fees", Name: "Emergency Consultation", Price: 1000, Currency: "BDT", IsOutpatient: true},
		{Category: "Medic Fee", Name: "Basic Medical Service", Price: 300, Currency: "BDT", IsOutpatient: true},
		{Category: "Medic Fee", Name: "Advanced Medical Service", Price: 500, Currency: "BDT", IsOutpatient: true},
		{Category: "Medic Fee", Name: "Emergency Medical Service", Price: 700, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Paracetamol 500mg", Price: 15, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Aspirin 75mg", Price: 12, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Amoxicillin 500mg", Price: 25, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Ibuprofen 400mg", Price: 18, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Omeprazole 20mg", Price: 22, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Cetirizine 10mg", Price: 14, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Metformin 500mg", Price: 16, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Amlodipine 5mg", Price: 20, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Atorvastatin 20mg", Price: 35, Currency: "BDT", IsOutpatient: true},
		{Category: "Medicine", Name: "Azithromycin 500mg", Price: 45, Currency: "BDT", IsOutpatient: true},

		// Inpatient items
		{Category: "Laboratory", Name: "Complete Blood Count", Price: 300, Currency: "BDT", IsOutpatient: false},
		{Category: "Laboratory", Name: "Blood Chemistry Panel", Price: 500, Currency: "BDT", IsOutpatient: false},
		{Category: "Laboratory", Name: "Liver Function Test", Price: 600, Currency: "BDT", IsOutpatient: false},
		{Category: "Laboratory", Name: "Kidney Function Test", Price: 550, Currency: "BDT", IsOutpatient: false},
		{Category: "Laboratory", Name: "Cardiac Enzymes", Price: 800, Currency: "BDT", IsOutpatient: false},
		{Category: "Laboratory", Name: "Coagulation Studies", Price: 700, Currency: "BDT", IsOutpatient: false},
		{Category: "Laboratory", Name: "Blood Gas Analysis", Price: 650, Currency: "BDT", IsOutpatient: false},
		{Category: "Laboratory", Name: "Electrolyte Panel", Price: 400, Currency: "BDT", IsOutpatient: false},
		{Category: "Halo, O2, NO2, etc.", Name: "Oxygen Therapy (per day)", Price: 400, Currency: "BDT", IsOutpatient: false},
		{Category: "Halo, O2, NO2, etc.", Name: "Nitrous Oxide", Price: 600, Currency: "BDT", IsOutpatient: false},
		{Category: "Halo, O2, NO2, etc.", Name: "Halo Traction", Price: 1200, Currency: "BDT", IsOutpatient: false},
		{Category: "Halo, O2, NO2, etc.", Name: "CPAP Machine (per day)", Price: 800, Currency: "BDT", IsOutpatient: false},
		{Category: "Orthopedic, S.Roll, etc.", Name: "Orthopedic Consultation", Price: 800, Currency: "BDT", IsOutpatient: false},
		{Category: "Orthopedic, S.Roll, etc.", Name: "Spinal Roll Support", Price: 1500, Currency: "BDT", IsOutpatient: false},
		{Category: "Orthopedic, S.Roll, etc.", Name: "Orthopedic Brace", Price: 2200, Currency: "BDT", IsOutpatient: false},
		{Category: "Orthopedic, S.Roll, etc.", Name: "Spine Support System", Price: 3500, Currency: "BDT", IsOutpatient: false},
		{Category: "Orthopedic, S.Roll, etc.", Name: "Orthopedic Device Setup", Price: 1800, Currency: "BDT", IsOutpatient: false},
		{Category: "Surgery, O.R. & Delivery", Name: "Minor Surgery", Price: 15000, Currency: "BDT", IsOutpatient: false},
		{Category: "Surgery, O.R. & Delivery", Name: "Major Surgery", Price: 35000, Currency: "BDT", IsOutpatient: false},
		{Category: "Surgery, O.R. & Delivery", Name: "Normal Delivery", Price: 8000, Currency: "BDT", IsOutpatient: false},
		{Category: "Surgery, O.R. & Delivery", Name: "C-Section Delivery", Price: 25000, Currency: "BDT", IsOutpatient: false},
		{Category: "Surgery, O.R. & Delivery", Name: "Operating Room Fee", Price: 5000, Currency: "BDT", IsOutpatient: false},
		{Category: "Surgery, O.R. & Delivery", Name: "Anesthesia Fee", Price: 3000, Currency: "BDT", IsOutpatient: false},
		{Category: "Registration Fees", Name: "Outpatient Registration", Price: 100, Currency: "BDT", IsOutpatient: false},
		{Category: "Registration Fees", Name: "Emergency Registration", Price: 200, Currency: "BDT", IsOutpatient: false},
		{Category: "Registration Fees", Name: "Admission Fee", Price: 500, Currency: "BDT", IsOutpatient: false},
		{Category: "Registration Fees", Name: "ICU Admission", Price: 1000, Currency: "BDT", IsOutpatient: false},
		{Category: "Registration Fees", Name: "Private Room Fee", Price: 800, Currency: "BDT", IsOutpatient: false},
		{Category: "Registration Fees", Name: "Semi-Private Room Fee", Price: 600, Currency: "BDT", IsOutpatient: false},
		{Category: "Discharge Medicine", Name: "Discharge Medication Package", Price: 800, Currency: "BDT", IsOutpatient: false},
		{Category: "Discharge Medicine", Name: "Pain Relief Package", Price: 400, Currency: "BDT", IsOutpatient: false},
		{Category: "Discharge Medicine", Name: "Antibiotic Course", Price: 600, Currency: "BDT", IsOutpatient: false},
		{Category: "Discharge Medicine", Name: "Chronic Disease Package", Price: 1200, Currency: "BDT", IsOutpatient: false},
	}
}
