/*
Package domain contains the core domain models of the mentor training engine.

It defines the entities of the training flow: the Section with its Cases, the
workflow nodes the flow graph is made of, the per-node runtime status and the
Solution accumulated while a learner works through the cases. This package is
kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Section / Case: the loaded, read-only definition of a training section.
  - WorkflowNode: an addressable point in the flow (Instruction, Case or Total).
  - NodeState: the runtime status of a node (Unvisited, QuestionShown, Answered, MentorAnswerShown).
  - Solution: the ordered case -> answer mapping produced by a session.
  - Event / EffectSet: what the presentation layer sends and what it gets back.
*/
package domain
