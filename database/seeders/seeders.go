package seeders

import (
	"log"

	"academia_go/database"
	"academia_go/models"
	"academia_go/utils"
)

// SeedAll populates the initial directory data. Every seed is idempotent:
// existing rows are left untouched.
func SeedAll() {
	seedAdminUser()
	seedSubjects()
	seedClassrooms()
	seedDemoTeacher()
	seedDemoStudents()
	seedDemoSession()
	log.Println("Database seeding completed")
}

func seedAdminUser() {
	var count int64
	database.DB.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		return
	}

	hashed, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Warning: could not hash seed admin password: %v", err)
		return
	}

	admin := models.User{
		Username: "admin",
		Password: hashed,
		Email:    "admin@academia.local",
		Role:     "admin",
		Status:   "active",
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Warning: could not seed admin user: %v", err)
		return
	}
	log.Println("Seeded default admin user (username: admin)")
}

func seedSubjects() {
	subjects := []models.Subject{
		{Name: "Matemáticas", Code: "MAT", Description: "Aritmética, álgebra y geometría"},
		{Name: "Lengua y Literatura", Code: "LEN", Description: "Comprensión lectora y redacción"},
		{Name: "Ciencias Naturales", Code: "CIE", Description: "Biología, física y química básica"},
		{Name: "Inglés", Code: "ING", Description: "Inglés como lengua extranjera"},
	}

	for _, subject := range subjects {
		var existing models.Subject
		if err := database.DB.Where("code = ?", subject.Code).First(&existing).Error; err == nil {
			continue
		}
		subject.Active = true
		if err := database.DB.Create(&subject).Error; err != nil {
			log.Printf("Warning: could not seed subject %s: %v", subject.Code, err)
		}
	}
}

func seedDemoTeacher() {
	var count int64
	database.DB.Model(&models.Teacher{}).Count(&count)
	if count > 0 {
		return
	}

	hashed, err := utils.HashPassword("docente123")
	if err != nil {
		log.Printf("Warning: could not hash seed teacher password: %v", err)
		return
	}

	user := models.User{
		Username: "lmendoza",
		Password: hashed,
		Email:    "lmendoza@academia.local",
		Role:     "teacher",
		Status:   "active",
	}
	if err := database.DB.Create(&user).Error; err != nil {
		log.Printf("Warning: could not seed teacher user: %v", err)
		return
	}

	teacher := models.Teacher{
		UserID:    user.ID,
		FirstName: "Laura",
		LastName:  "Mendoza",
		Specialty: "Matemáticas",
		Active:    true,
	}
	if err := database.DB.Create(&teacher).Error; err != nil {
		log.Printf("Warning: could not seed teacher profile: %v", err)
	}
}

func seedDemoStudents() {
	students := []models.Student{
		{FirstName: "Carlos", LastName: "Pérez", DocumentID: "10000001"},
		{FirstName: "María", LastName: "González", DocumentID: "10000002"},
		{FirstName: "José", LastName: "Ramírez", DocumentID: "10000003"},
	}

	for _, student := range students {
		var existing models.Student
		if err := database.DB.Where("document_id = ?", student.DocumentID).
			First(&existing).Error; err == nil {
			continue
		}
		student.Status = "active"
		if err := database.DB.Create(&student).Error; err != nil {
			log.Printf("Warning: could not seed student %s: %v", student.DocumentID, err)
		}
	}
}

func seedDemoSession() {
	var count int64
	database.DB.Model(&models.CourseSession{}).Count(&count)
	if count > 0 {
		return
	}

	var subject models.Subject
	if err := database.DB.Where("code = ?", "MAT").First(&subject).Error; err != nil {
		return
	}
	var teacher models.Teacher
	if err := database.DB.First(&teacher).Error; err != nil {
		return
	}
	var classroom models.Classroom
	if err := database.DB.Where("name = ?", "Aula 101").First(&classroom).Error; err != nil {
		return
	}

	session := models.CourseSession{
		SubjectID:   subject.ID,
		TeacherID:   teacher.ID,
		ClassroomID: classroom.ID,
		DaysOfWeek:  []string{"lunes", "miércoles", "viernes"},
		StartTime:   "08:00",
		EndTime:     "10:00",
		Capacity:    30,
		Status:      models.SessionActive,
	}
	if err := database.DB.Create(&session).Error; err != nil {
		log.Printf("Warning: could not seed course session: %v", err)
		return
	}

	var students []models.Student
	database.DB.Limit(3).Find(&students)
	for _, student := range students {
		enrollment := models.Enrollment{
			CourseSessionID: session.ID,
			StudentID:       student.ID,
			Status:          models.EnrollmentActive,
		}
		if err := database.DB.Create(&enrollment).Error; err != nil {
			log.Printf("Warning: could not seed enrollment for student %d: %v", student.ID, err)
		}
	}
}

func seedClassrooms() {
	classrooms := []models.Classroom{
		{Name: "Aula 101", Capacity: 30, Location: "Primer piso"},
		{Name: "Aula 102", Capacity: 25, Location: "Primer piso"},
		{Name: "Aula 201", Capacity: 35, Location: "Segundo piso"},
		{Name: "Laboratorio", Capacity: 20, Location: "Segundo piso"},
	}

	for _, classroom := range classrooms {
		var existing models.Classroom
		if err := database.DB.Where("name = ?", classroom.Name).First(&existing).Error; err == nil {
			continue
		}
		classroom.Active = true
		if err := database.DB.Create(&classroom).Error; err != nil {
			log.Printf("Warning: could not seed classroom %s: %v", classroom.Name, err)
		}
	}
}
