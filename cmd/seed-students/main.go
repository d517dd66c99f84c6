package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/config"
	"github.com/chasfatacademy/exam-backend/internal/database"
	"github.com/chasfatacademy/exam-backend/internal/logger"
	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/repository"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/jackc/pgx/v5"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)

	studentService := service.NewStudentService(studentRepo, examRepo, log)

	fmt.Println("=== Seeding 50 Students ===")

	courseCode := "CSC101"

	// Find or create the demo course. Seeded students are enrolled into it
	// so a freshly seeded database has a working lobby.
	var courseID int
	err = pool.QueryRow(ctx,
		"SELECT id FROM courses WHERE code = $1", courseCode).Scan(&courseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			fmt.Printf("Course %s not found. Creating it...\n", courseCode)

			var examinerID int
			if err := pool.QueryRow(ctx,
				"SELECT id FROM examiners ORDER BY id LIMIT 1").Scan(&examinerID); err != nil {
				log.Fatal().Err(err).Msg("No examiner found. Run create-examiner first")
			}

			course := &model.Course{
				Code:       courseCode,
				Title:      "Introduction to Computer Science",
				ExaminerID: examinerID,
			}
			if err := courseRepo.Create(ctx, course); err != nil {
				log.Fatal().Err(err).Msg("Failed to create course")
			}
			courseID = course.ID
			fmt.Printf("Created course with ID: %d\n", courseID)
		} else {
			log.Fatal().Err(err).Msg("Failed to check existing course")
		}
	} else {
		fmt.Printf("Found existing course with ID: %d\n", courseID)
	}

	names := []string{
		"Adebayo Ogunlesi", "Chiamaka Nwosu", "Emeka Okafor", "Funmilayo Adeyemi", "Ibrahim Musa",
		"Ngozi Eze", "Oluwaseun Adebisi", "Amina Bello", "Chinedu Obi", "Folake Balogun",
		"Yusuf Abdullahi", "Adaeze Okonkwo", "Babatunde Fashola", "Halima Suleiman", "Ikechukwu Anyanwu",
		"Kemi Adetiba", "Mohammed Sani", "Nneka Chukwu", "Olamide Bakare", "Rukayat Lawal",
		"Segun Arinze", "Temitope Alabi", "Uchenna Nnamdi", "Zainab Garba", "Ayodele Fayose",
		"Blessing Okagbare", "Chukwuemeka Ike", "Damilola Adegbite", "Efe Ajagba", "Fatima Dangote",
		"Gbenga Adeboye", "Hauwa Mustapha", "Ifeoma Chukwuka", "Jide Kosoko", "Kehinde Wiley",
		"Lanre Oyebanjo", "Maryam Abacha", "Nonso Diobi", "Obiageli Ezekwesili", "Patience Ozokwor",
		"Quadri Aruna", "Remilekun Safaratu", "Sadiq Daba", "Titilayo Kuti", "Umar Gwandu",
		"Victoria Inyama", "Wasiu Ayinde", "Yemi Alade", "Zikora Udeh", "Abubakar Imam",
	}

	created := 0
	for i, fullName := range names {
		parts := strings.SplitN(fullName, " ", 2)
		matricNo := fmt.Sprintf("CSC/2025/%03d", i+1)

		student, err := studentService.Create(ctx, &model.CreateStudentRequest{
			MatricNo:  matricNo,
			FirstName: parts[0],
			LastName:  parts[1],
			Email:     fmt.Sprintf("%s.%d@student.chasfat.edu.ng", strings.ToLower(parts[0]), i+1),
		})
		if err != nil {
			fmt.Printf("Skipping %s (%s): %v\n", fullName, matricNo, err)
			continue
		}

		if err := courseRepo.Enroll(ctx, courseID, []int{student.ID}); err != nil {
			fmt.Printf("Failed to enroll %s: %v\n", matricNo, err)
			continue
		}
		created++
	}

	fmt.Printf("\nDone. %d students seeded and enrolled in %s.\n", created, courseCode)
}
