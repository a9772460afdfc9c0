package database

import (
	"fmt"
	"log"
	"os"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedSemesters(); err != nil {
		return fmt.Errorf("failed to seed semesters: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedElectiveBuckets(); err != nil {
		return fmt.Errorf("failed to seed elective buckets: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	// Check if admin already exists
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	// Get admin credentials from environment variables
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	// Hash password
	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         model.RoleAdmin,
		TokenVersion: 0,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}

// SeedSemesters creates the current academic year's terms
func (s *Seeder) SeedSemesters() error {
	var count int64
	if err := s.db.Model(&model.Semester{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Semesters already exist, skipping...")
		return nil
	}

	academicYear := os.Getenv("ACADEMIC_YEAR")
	if academicYear == "" {
		academicYear = "2025-26"
	}

	semesters := make([]model.Semester, 0, 8)
	for number := 1; number <= 8; number++ {
		semesters = append(semesters, model.Semester{
			Number:       number,
			AcademicYear: academicYear,
			IsActive:     true,
		})
	}

	if err := s.db.Create(&semesters).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d semesters for %s\n", len(semesters), academicYear)
	return nil
}

// SeedCourses creates a small sample curriculum for semester 5
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	var semester model.Semester
	if err := s.db.Where("number = ?", 5).First(&semester).Error; err != nil {
		log.Println("⏭️  Semester 5 not found, skipping course seed...")
		return nil
	}

	courses := []model.Course{
		{
			SemesterID: semester.ID,
			Code:       "CS8501",
			Title:      "Theory of Computation",
			Category:   model.CategoryCore,
			Credits:    4,
			IsActive:   true,
		},
		{
			SemesterID: semester.ID,
			Code:       "CS8591",
			Title:      "Computer Networks",
			Category:   model.CategoryCore,
			Credits:    3,
			IsActive:   true,
		},
		{
			SemesterID: semester.ID,
			Code:       "CS8651",
			Title:      "Internet Programming",
			Category:   model.CategoryProfessionalElective,
			Credits:    3,
			IsActive:   true,
		},
		{
			SemesterID: semester.ID,
			Code:       "CS8691",
			Title:      "Artificial Intelligence",
			Category:   model.CategoryProfessionalElective,
			Credits:    3,
			IsActive:   true,
		},
		{
			SemesterID: semester.ID,
			Code:       "GE8561",
			Title:      "Environment Science and Engineering",
			Category:   model.CategoryOpenElective,
			Credits:    3,
			IsActive:   true,
		},
	}

	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	// One section per seeded course
	for i := range courses {
		section := model.CourseSection{
			CourseID: courses[i].ID,
			Number:   1,
			Capacity: 60,
		}
		if err := s.db.Create(&section).Error; err != nil {
			return err
		}
		if err := s.db.Model(&model.Course{}).
			Where("id = ?", courses[i].ID).
			UpdateColumn("section_seq", 1).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Created %d courses with one section each\n", len(courses))
	return nil
}

// SeedElectiveBuckets groups the seeded electives into a bucket
func (s *Seeder) SeedElectiveBuckets() error {
	var count int64
	if err := s.db.Model(&model.ElectiveBucket{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Elective buckets already exist, skipping...")
		return nil
	}

	var electives []model.Course
	if err := s.db.Where("category = ?", model.CategoryProfessionalElective).
		Find(&electives).Error; err != nil {
		return err
	}
	if len(electives) == 0 {
		log.Println("⏭️  No elective courses found, skipping bucket seed...")
		return nil
	}

	bucket := model.ElectiveBucket{
		SemesterID: electives[0].SemesterID,
		Number:     1,
		Name:       "Professional Elective I",
	}
	if err := s.db.Create(&bucket).Error; err != nil {
		return err
	}

	for _, course := range electives {
		membership := model.BucketCourse{BucketID: bucket.ID, CourseID: course.ID}
		if err := s.db.Create(&membership).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Created bucket %q with %d courses\n", bucket.Name, len(electives))
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
