// Package milestone tracks project milestones through
// NOT_STARTED, IN_PROGRESS, DELAYED and COMPLETED. Completing a milestone
// sets its progress to 100 and advances the owning project.
package milestone
